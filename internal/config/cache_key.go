package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key holding the active login JTI for a user.
func (r *CacheKeyStruct) UserSessionKey(userID string) string {
	return fmt.Sprintf("login:%s", userID)
}

// SessionStartKey returns the cache key for an examinee's session start time.
func (r *CacheKeyStruct) SessionStartKey(examID, userID string) string {
	return fmt.Sprintf("user:%s:exam:%s:session_start", userID, examID)
}

// SessionAnswersKey returns the cache key mirroring an examinee's in-progress answers.
func (r *CacheKeyStruct) SessionAnswersKey(examID, userID string) string {
	return fmt.Sprintf("user:%s:exam:%s:answers", userID, examID)
}

// ExamPayloadKey returns the cache key for an exam's examinee-facing payload.
func (r *CacheKeyStruct) ExamPayloadKey(examID string) string {
	return fmt.Sprintf("exam:%s:payload", examID)
}

// ExamAnswerKeyKey returns the cache key for an exam's correct-answer map.
func (r *CacheKeyStruct) ExamAnswerKeyKey(examID string) string {
	return fmt.Sprintf("exam:%s:key", examID)
}

// ExamMonitorChannel returns the Redis PubSub channel name for an exam's live monitor.
func (r *CacheKeyStruct) ExamMonitorChannel(examID string) string {
	return fmt.Sprintf("exam:%s:monitor", examID)
}

var CacheKey = NewCacheKeyStruct()
