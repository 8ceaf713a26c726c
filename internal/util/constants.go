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

// 考试表单中选项字段的前缀，例如 choice_12=34
const ChoiceFieldPrefix = "choice_"

// 课程列表默认展示数量
const CourseListLimit = 10

const (
	MimeImage       = "image/"
	MimeOctetStream = "application/octet-stream"
)

var AllowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
