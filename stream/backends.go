package stream

// Blank-imported so each backend's init() registers itself into
// source.Registry; stream itself never references these subpackages by
// name, only through the registry SetDataInterface looks up.
import (
	_ "github.com/bgpfix/bgpstream/source/csvcatalog"
	_ "github.com/bgpfix/bgpstream/source/memcatalog"
	_ "github.com/bgpfix/bgpstream/source/singlefile"
	_ "github.com/bgpfix/bgpstream/source/sqlcatalog"
)
