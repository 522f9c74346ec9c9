package crawler

import "errors"

// errEmptyHost is returned when a seed URL has no hostname to crawl.
var errEmptyHost = errors.New("seed URL has no host")
