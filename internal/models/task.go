package models

// PurgeFileTask is published by the reconcile scheduler for every expired
// reservation and consumed by the purge worker.
type PurgeFileTask struct {
	FileID    uint64 `json:"file_id"`
	Bucket    string `json:"bucket"`
	ObjectKey string `json:"object_key"`
}
