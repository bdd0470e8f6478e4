// Package v1 defines the YAML manifest describing an archive job.
package v1

// ArchiveJob is the top-level manifest document.
type ArchiveJob struct {
	Kind     string         `yaml:"kind" json:"kind" validate:"required,eq=ArchiveJob"`
	Metadata Metadata       `yaml:"metadata" json:"metadata" validate:"required"`
	Spec     ArchiveJobSpec `yaml:"spec" json:"spec" validate:"required"`
}

type Metadata struct {
	Name string `yaml:"name" json:"name" validate:"required"`
}

type ArchiveJobSpec struct {
	// Entries are archived in manifest order.
	Entries []Entry `yaml:"entries" json:"entries" validate:"required,min=1,dive"`

	// Archive tunes the produced ZIP stream.
	Archive *ArchiveSpec `yaml:"archive,omitempty" json:"archive,omitempty"`

	// Output configures where the archive goes (default: stdout).
	Output *OutputSpec `yaml:"output,omitempty" json:"output,omitempty"`
}

// Entry names one archive member and where its content comes from
// (exactly one of the source fields should be set).
type Entry struct {
	Name string     `yaml:"name" json:"name" validate:"required"`
	File *FileEntry `yaml:"file,omitempty" json:"file,omitempty"`
	HTTP *HTTPEntry `yaml:"http,omitempty" json:"http,omitempty"`
}

// FileEntry reads content from a local file.
type FileEntry struct {
	Path string `yaml:"path" json:"path" validate:"required"`
}

// HTTPEntry fetches content with an HTTP GET.
type HTTPEntry struct {
	URL     string            `yaml:"url" json:"url" validate:"required,url"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`

	// Timeout in seconds for the whole request.
	Timeout *int `yaml:"timeout,omitempty" json:"timeout,omitempty" validate:"omitempty,min=1"`

	// Insecure skips TLS certificate verification.
	Insecure bool `yaml:"insecure,omitempty" json:"insecure,omitempty"`
}

// ArchiveSpec tunes compression and timestamps.
type ArchiveSpec struct {
	// CompressionLevel is a DEFLATE level from 1 (fastest) to 9 (best).
	CompressionLevel *int `yaml:"compression_level,omitempty" json:"compression_level,omitempty" validate:"omitempty,min=-2,max=9"`

	// Modified is an RFC 3339 timestamp stamped on every entry. Unset
	// leaves timestamp fields zero, making output deterministic.
	Modified *string `yaml:"modified,omitempty" json:"modified,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// OutputSpec configures the archive destination (exactly one of the fields
// should be set).
type OutputSpec struct {
	Stdout *StdoutSpec `yaml:"stdout,omitempty" json:"stdout,omitempty"`
	File   *FileSpec   `yaml:"file,omitempty" json:"file,omitempty"`
	S3     *S3Spec     `yaml:"s3,omitempty" json:"s3,omitempty"`
}

// StdoutSpec streams the archive to standard output (no options).
type StdoutSpec struct{}

// FileSpec writes the archive to a local path.
type FileSpec struct {
	Path string `yaml:"path" json:"path" validate:"required"`
}

// S3Spec uploads the archive to S3-compatible object storage.
type S3Spec struct {
	Bucket          string `yaml:"bucket" json:"bucket" validate:"required"`
	Key             string `yaml:"key,omitempty" json:"key,omitempty"`
	Prefix          string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Region          string `yaml:"region,omitempty" json:"region,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty" json:"endpoint,omitempty" validate:"omitempty,url"`
	AccessKeyID     string `yaml:"access_key_id,omitempty" json:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty" json:"secret_access_key,omitempty"`
	ForcePathStyle  bool   `yaml:"force_path_style,omitempty" json:"force_path_style,omitempty"`
}
