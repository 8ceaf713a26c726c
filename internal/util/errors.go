package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrTokenRevoked       = errors.New("token revoked")

	ErrCourseNotFound     = errors.New("course not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrChoiceNotFound     = errors.New("choice not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrNotEnrolled        = errors.New("user is not enrolled in this course")
	ErrAlreadyEnrolled    = errors.New("user already enrolled in this course")
	ErrMalformedAnswer    = errors.New("malformed answer value")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
)
