package export

// Persistence

type WriteResult struct {
	urlHash string // identity (filename without extension)
	path    string
}

func NewWriteResult(
	urlHash string,
	path string,
) WriteResult {
	return WriteResult{
		urlHash: urlHash,
		path:    path,
	}
}

func (w *WriteResult) URLHash() string {
	return w.urlHash
}

func (w *WriteResult) Path() string {
	return w.path
}
