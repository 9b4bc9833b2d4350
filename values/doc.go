// Package values reads typed values out of loosely typed key/value bags such
// as decoded JSON, merged configuration or request parameters.
//
// Every accessor takes a Bag and one or more candidate keys:
//
//	port, err := values.Int(bag, "port")
//	host, err := values.String(bag, "host", "hostname", "addr")
//
// A value that already has the requested type is returned unchanged;
// otherwise it is coerced ("42" becomes 42, "yes" becomes true, a JSON file
// path becomes a map). With a single key any failure is returned at once.
// With several keys each is tried in order and the first usable one wins;
// the error then names every key. Absent keys read as null. Plain accessors
// reject null, the OrNil variants return it as a nil pointer, map or slice.
//
// All failures are *ValueError and match ErrValue through errors.Is.
//
// Package-level functions use DefaultReader. Build a Reader with NewReader
// to probe files on another afero.Fs, read dates in a fixed location or make
// boolean and string-map coercion strict.
package values
