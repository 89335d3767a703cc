package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文件上传相关常量
const (
	MimeImage       = "image/"
	MaxAvatarSize   = 5 << 20
	AvatarDirectory = "avatars"
)

const (
	DefaultSessionLimit = 10
	MaxSessionLimit     = 100
)
