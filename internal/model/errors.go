package model

import "errors"

// Common errors used across the application
var (
	// Validation errors
	ErrValidation = errors.New("invalid input")

	// Room errors
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomClosed          = errors.New("room is closed")
	ErrRoomNotInLobby      = errors.New("room is no longer in the lobby phase")
	ErrCardsAlreadyCreated = errors.New("cards have already been created")
	ErrPoolTooSmall        = errors.New("need at least 24 options to create cards")

	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Card errors
	ErrCardNotFound  = errors.New("card not found")
	ErrSpaceNotFound = errors.New("space not found")
	ErrFreeSpace     = errors.New("free space cannot be toggled")

	// Generator errors
	ErrGeneratorUnavailable = errors.New("option generation service is unavailable")
)
