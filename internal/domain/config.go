package domain

// KeyPrefix namespaces every Redis key owned by the service.
const KeyPrefix = "foofind:"

// FilesIndex is the daemon index holding file documents.
const FilesIndex = "idx_files"

// Document attributes stored in the files index.
const (
	AttrURI1     = "uri1"
	AttrURI2     = "uri2"
	AttrURI3     = "uri3"
	AttrSource   = "s"
	AttrType     = "ct"
	AttrSize     = "z"
	AttrRating   = "r"
	AttrRating2  = "r2"
	AttrBlocked  = "bl"
	AttrRanked   = "wr"
	FieldName    = "fn"
	FieldMeta    = "md"
	FieldRelMeta = "rmd"
)
