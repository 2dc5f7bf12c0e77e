package archive

import "context"

// Store port untuk arsip best-effort (balasan classifier yang gagal di-decode,
// payload bulk upload). Kegagalan put tidak boleh menggagalkan operasi utama.
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}
