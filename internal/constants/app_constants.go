package constants

import "time"

const (
	// ServiceName identifies this service in banners, spans and events.
	ServiceName = "jobai-go"
	// ParserVersion is stamped on every stored extraction so results from older
	// pattern libraries can be told apart.
	ParserVersion = "1.0"

	// ResultCacheDuration is used when redis.result_cache_ttl is unset or invalid.
	ResultCacheDuration = 24 * time.Hour
	// MD5RecordExpiry is used when redis.md5_record_expire_days is unset.
	MD5RecordExpiry = 30 * 24 * time.Hour

	// ContentTypeJSON and ContentTypePDF are the object content types written to MinIO.
	ContentTypeJSON = "application/json"
	ContentTypePDF  = "application/pdf"
)
