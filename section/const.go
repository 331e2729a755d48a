package section

// offset and section sizes in raster and archive files
const (
	HeaderSize        = 32 // fixed header size in bytes (shared by raster and archive headers)
	ReservedSize      = 14 // trailing zero bytes of the raster header
	ArchiveHeaderSize = 32 // fixed archive header size in bytes
	PayloadOffset     = HeaderSize

	// raster header field offsets
	versionOffset  = 0
	widthOffset    = 1
	heightOffset   = 5
	depthOffset    = 9
	minimumOffset  = 10
	scalingOffset  = 14
	reservedOffset = 18

	// MagicArchiveV1 identifies a petfill archive ("PETA").
	MagicArchiveV1 = 0x50455441
	// ArchiveVersion is the only archive layout version.
	ArchiveVersion = 1
)
