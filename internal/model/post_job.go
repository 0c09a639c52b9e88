package model

// PostPublishJob is the broker payload that asks the worker to publish one
// scheduled post to its platforms.
type PostPublishJob struct {
	PostID    uint       `json:"post_id"`
	UserID    uint       `json:"user_id"`
	Platforms []Platform `json:"platforms"`
}
