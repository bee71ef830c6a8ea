/*
 * a basic example for bgpstream usage
 */
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/bgpfix/bgpstream/filterset"
	"github.com/bgpfix/bgpstream/record"
	"github.com/bgpfix/bgpstream/stream"
)

var (
	opt_collector = flag.String("collector", "", "restrict to this collector")
	opt_recent    = flag.String("recent", "1h", "time window, e.g. 15m/1h/2d")
	opt_live      = flag.Bool("live", false, "keep polling for new data forever")
)

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Printf("usage: bgpstream [OPTIONS] <updates-file>\n")
		os.Exit(1)
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	c := stream.New(stream.WithLogger(&logger))
	if *opt_live {
		c.SetLiveMode()
	}

	must(c.SetDataInterface("singlefile"))
	must(c.SetDataInterfaceOption("upd-file", flag.Arg(0)))
	if *opt_collector != "" {
		must(c.AddFilter(filterset.KindCollector, *opt_collector))
	}
	must(c.AddRecentInterval(*opt_recent))
	must(c.Start())
	defer c.Destroy()

	for {
		rec, status, err := c.NextRecord()
		switch status {
		case stream.StatusRecord:
			print(rec)
		case stream.StatusEndOfStream:
			return
		case stream.StatusError:
			fmt.Fprintf(os.Stderr, "stream error: %v\n", err)
			os.Exit(1)
		}
	}
}

func print(r *record.Record) {
	for _, el := range r.Elements {
		fmt.Printf("%d|%s|%s|AS%d|%s\n", r.Timestamp, r.Collector, el.Type, el.PeerASN, el.Prefix)
	}
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
