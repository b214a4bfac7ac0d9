// Package factory instantiates pluggable modules such as data sources and
// metrics sinks from configuration. A module is a type name plus a map of
// raw settings that the registered factory decodes into its own struct.
//
//	reg := factory.NewRegistry[source.Source]()
//	reg.Register("csv", func(conf map[string]any) (source.Source, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return csvsource.Open(c.Path)
//	})
package factory
