package common

import "net/http"

const (
	StageDev              = "dev"
	StageStaging          = "staging"
	StageTest             = "test"
	StageProd             = "prod"
	ContentTypeJSON       = "application/json"
	ContentTypeGitHubJSON = "application/vnd.github+json"
	GitHubAPIVersion      = "2022-11-28"
	DefaultCharset        = "UTF-8"
	DefaultAWSRegion      = "us-east-1"
)

var (
	HeaderContentType      = http.CanonicalHeaderKey("Content-Type")
	HeaderAccept           = http.CanonicalHeaderKey("Accept")
	HeaderAuthorization    = http.CanonicalHeaderKey("Authorization")
	HeaderGitHubAPIVersion = http.CanonicalHeaderKey("X-GitHub-Api-Version")
	HeaderRequestID        = http.CanonicalHeaderKey("X-Request-ID")
	HeaderETag             = http.CanonicalHeaderKey("ETag")
	HeaderIfNoneMatch      = http.CanonicalHeaderKey("If-None-Match")
)
