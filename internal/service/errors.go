package service

import "errors"

// Typed failures returned by the services; the API layer maps these
// to HTTP status codes (not found -> 404, permission denied -> 403).
var (
	ErrUserNotFound     = errors.New("user not found")                        // Caller identity resolves to no user row
	ErrAlbumNotFound    = errors.New("album not found")                       // Referenced album does not exist
	ErrSongNotFound     = errors.New("song not found")                        // Referenced song does not exist
	ErrPermissionDenied = errors.New("you can only modify your own albums")   // Authenticated but neither owner nor admin
)
