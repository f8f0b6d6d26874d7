// Package preflight reports whether the external tools each tier shells
// out to are installed. The doctor command renders the results, and
// analyze uses them to explain a failure before any download starts.
package preflight
