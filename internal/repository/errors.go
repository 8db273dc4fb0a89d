package repository

import "errors"

var (
	ErrRetailerNotFound    = errors.New("retailer not found")
	ErrObservationNotFound = errors.New("price observation not found")
	ErrSlugConflict        = errors.New("shoe slug already exists")
	ErrQueueEmpty          = errors.New("job queue is empty")
	ErrLockNotAcquired     = errors.New("retailer job already running")
	ErrNavigationFailed    = errors.New("failed to navigate to page")
	ErrFetchFailed         = errors.New("failed to fetch page")
	ErrBlockedByRobots     = errors.New("blocked by robots.txt")
)
