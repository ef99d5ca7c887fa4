package importer

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/ochronus/gotransloadit/internal/services/transloadit"
)

// UnknownSize marks a remote file whose size has to be probed.
const UnknownSize int64 = -1

// RemoteFile represents a file the service should fetch from a URL
type RemoteFile struct {
	Name string
	URL  string
	Size int64
}

// String returns a formatted string representation of the remote file
func (f RemoteFile) String() string {
	return fmt.Sprintf("[%s]", f.Name)
}

// FileRef converts the remote file into the client's file view
func (f RemoteFile) FileRef() transloadit.FileRef {
	return transloadit.FileRef{
		Name:      f.Name,
		Size:      f.Size,
		UploadURL: f.URL,
	}
}

// ParseRemoteFile parses "name=url" or a bare URL. Without a name the base
// name of the URL path is used. The size is left unknown.
func ParseRemoteFile(spec string) (RemoteFile, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return RemoteFile{}, fmt.Errorf("empty remote file")
	}

	name, rawURL := "", spec
	if i := strings.Index(spec, "="); i >= 0 && !strings.Contains(spec[:i], "://") {
		name, rawURL = strings.TrimSpace(spec[:i]), strings.TrimSpace(spec[i+1:])
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return RemoteFile{}, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return RemoteFile{}, fmt.Errorf("url %q must be absolute", rawURL)
	}

	if name == "" {
		name = path.Base(u.Path)
		if name == "." || name == "/" {
			name = u.Host
		}
	}

	return RemoteFile{Name: name, URL: rawURL, Size: UnknownSize}, nil
}

// ResultStatus represents how far a file got through the import
type ResultStatus int

const (
	// StatusFailed indicates the file could not be registered
	StatusFailed ResultStatus = iota
	// StatusReserved indicates capacity was reserved but the file was not added
	StatusReserved
	// StatusAdded indicates the file was registered with the assembly
	StatusAdded
)

// String returns a string representation of the status
func (s ResultStatus) String() string {
	switch s {
	case StatusFailed:
		return "Failed"
	case StatusReserved:
		return "Reserved"
	case StatusAdded:
		return "Added"
	default:
		return "Unknown"
	}
}

// Result is the outcome of importing one file
type Result struct {
	File    RemoteFile
	Status  ResultStatus
	Reserve transloadit.Response
	Add     transloadit.Response
	Err     error
}

// importJob is handed to a worker
type importJob struct {
	index int
	file  RemoteFile
}
