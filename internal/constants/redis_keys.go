package constants

// Redis key layout: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix is shared by every key this service writes.
	AppPrefix = "app"

	// ExtractionModulePrefix extraction results
	ExtractionModulePrefix = "extraction"
	// FileModulePrefix uploaded files
	FileModulePrefix = "file"

	// EntityResult cached combined response
	EntityResult = "result"
	// EntityDedupSet set of seen file MD5s
	EntityDedupSet = "dedup_set"
	// EntityMD5ToUUID file MD5 to submission UUID
	EntityMD5ToUUID = "md5_to_uuid"

	// KeyExtractionResult cached combined response JSON (STRING)
	// Format: app:extraction:result:{md5}
	KeyExtractionResult = AppPrefix + ":" + ExtractionModulePrefix + ":" + EntityResult + ":%s"

	// KeyFileMD5Set processed file MD5s (SET)
	// Format: app:file:dedup_set
	KeyFileMD5Set = AppPrefix + ":" + FileModulePrefix + ":" + EntityDedupSet

	// KeyFileMD5ToSubmissionUUID MD5 to the submission that first produced it (STRING)
	// Format: app:file:md5_to_uuid:{md5}
	KeyFileMD5ToSubmissionUUID = AppPrefix + ":" + FileModulePrefix + ":" + EntityMD5ToUUID + ":%s"
)
