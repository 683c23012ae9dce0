// usecase/content_type.go
package usecase

import "strings"

// acceptedVideoTypes are matched by prefix so that codec parameters such as
// `video/mp4; codecs="avc1"` are tolerated.
var acceptedVideoTypes = []string{
	"video/mp4",
	"video/mpeg",
	"video/quicktime",
	"video/x-msvideo",
	"video/x-ms-wmv",
	"video/webm",
	"video/3gpp",
	"video/3gpp2",
}

// IsVideoContentType reports whether contentType is one of the accepted video types.
func IsVideoContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	for _, t := range acceptedVideoTypes {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}
	return false
}

const defaultVideoExtension = "mp4"

// videoExtension returns the text after the last '.' of the original name, or
// mp4 when there is none. Anything that is not a short alphanumeric suffix is
// replaced by the default so user input never reaches the filesystem.
func videoExtension(originalFilename string) string {
	i := strings.LastIndexByte(originalFilename, '.')
	if i < 0 || i == len(originalFilename)-1 {
		return defaultVideoExtension
	}
	ext := originalFilename[i+1:]
	if len(ext) > 16 {
		return defaultVideoExtension
	}
	for _, r := range ext {
		if !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9') {
			return defaultVideoExtension
		}
	}
	return ext
}
