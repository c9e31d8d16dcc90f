package libhdr

// these functions are only exported when running tests

var (
	ParseHeader    = parseHeader
	DecodeScanline = decodeScanline
	OldDecrunch    = oldDecrunch
	NewDecrunch    = newDecrunch
)
