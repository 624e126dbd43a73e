package game

import "errors"

var (
	ErrIllegalMove        = errors.New("illegal move")
	ErrGameOver           = errors.New("game is over")
	ErrPromotionPending   = errors.New("promotion choice pending")
	ErrNoPromotionPending = errors.New("no promotion pending")
	ErrInvalidPromotion   = errors.New("invalid promotion piece")
)
