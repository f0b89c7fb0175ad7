package source

import "github.com/rotisserie/eris"

var errNoExtractor = eris.New("source: no extractor configured")
