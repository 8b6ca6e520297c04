package constant

// Media types a playback element may be asked about.
const (
	MIMETypeHLS    = "application/vnd.apple.mpegurl"
	MIMETypeHLSAlt = "application/x-mpegURL"
	MIMETypeMP4    = "video/mp4"
	MIMETypeWebM   = "video/webm"
	MIMETypeMPEGTS = "video/mp2t"
	MIMETypeJSON   = "application/json"
)

// HTTP header names.
const (
	HeaderContentType   = "Content-Type"
	HeaderUserAgent     = "User-Agent"
	HeaderAuthorization = "Authorization"
	HeaderAccept        = "Accept"
)
