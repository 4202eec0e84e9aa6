package game

import "errors"

var (
	ErrIllegalMove     = errors.New("illegal move")
	ErrInvalidSetup    = errors.New("invalid game setup")
	ErrGameOver        = errors.New("game is over")
	ErrRoundInProgress = errors.New("round still in progress")
)
