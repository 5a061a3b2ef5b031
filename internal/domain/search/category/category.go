// Package category maps user-facing content categories to the daemon's content-type codes.
package category

import (
	"slices"
	"strings"
)

// Content-type codes stored in the "ct" attribute.
const (
	Unknown  int64 = 0
	Audio    int64 = 1
	Video    int64 = 2
	Image    int64 = 3
	Document int64 = 4
	Software int64 = 5
	ISOImage int64 = 6
	Archive  int64 = 7
	Book     int64 = 8
)

var categories = map[string][]int64{
	"audio":    {Audio},
	"video":    {Video},
	"image":    {Image},
	"document": {Document, Book},
	"software": {Software, ISOImage},
	"archive":  {Archive},
}

// extensions are file-extension tokens a phrase list may end with.
var extensions = map[string]struct{}{}

func init() {
	for _, ext := range []string{
		"3gp", "7z", "aac", "ape", "avi", "azw", "bin", "bmp", "cue", "divx", "djvu", "doc", "docx",
		"epub", "exe", "flac", "flv", "gif", "gz", "iso", "jpeg", "jpg", "m4a", "m4v", "mkv", "mobi",
		"mov", "mp3", "mp4", "mpeg", "mpg", "msi", "nrg", "odt", "ogg", "ogm", "pdf", "png", "ppt",
		"pptx", "rar", "rtf", "srt", "tar", "tgz", "tif", "tiff", "torrent", "txt", "vob", "wav",
		"webm", "wma", "wmv", "xls", "xlsx", "zip",
	} {
		extensions[ext] = struct{}{}
	}
}

// Codes returns the content-type codes of a category and whether the category is known.
func Codes(name string) ([]int64, bool) {
	codes, ok := categories[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return slices.Clone(codes), true
}

// Names returns the known category names, sorted.
func Names() []string {
	names := make([]string, 0, len(categories))
	for n := range categories {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// IsExtension reports whether token is a known file-extension token.
func IsExtension(token string) bool {
	_, ok := extensions[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(token), "."))]
	return ok
}
