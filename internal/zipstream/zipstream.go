// Package zipstream produces ZIP archives as a forward-only byte stream.
//
// The writer never seeks: sizes and checksums that the ZIP format would
// normally place in each local file header are deferred to a trailing data
// descriptor (general-purpose flag bit 3), which makes the output suitable
// for pipes, sockets, and object-storage uploads. Entries are compressed
// with DEFLATE and named in UTF-8. ZIP64 is not supported: archives are
// limited to 65535 entries and 4 GiB per-file and total sizes.
package zipstream
