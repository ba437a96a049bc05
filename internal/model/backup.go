package model

// Backup describes one server-side database snapshot.
type Backup struct {
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
}

// BackupResult is the reply of /backup/create.
type BackupResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	BackupFile string `json:"backup_file"`
	Timestamp  string `json:"timestamp"`
}
