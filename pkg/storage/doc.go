// Package storage uploads user files, currently avatars, to S3-compatible object storage.
//
//	s, err := storage.New(cfg.S3)
//	info, err := storage.PutImage(ctx, s, fileHeader, "avatars", 2<<20)
//	url := s.URL(info.Key)
//
// Content types are detected from the file's leading bytes, never from its name.
package storage
