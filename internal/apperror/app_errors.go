package apperror

import "errors"

var (
	ErrGameFinished  = errors.New("game is already finished")
	ErrNotYourTurn   = errors.New("it's not your turn")
	ErrIllegalMove   = errors.New("move does not flank any opponent piece")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrInvalidCell   = errors.New("invalid cell")
	ErrWrongState    = errors.New("session does not accept this intent now")
	ErrNoLegalMoves  = errors.New("no legal moves")
	ErrUnknownAction = errors.New("unknown message action")
)

var (
	ErrConnectionTimeout    = errors.New("connection timed out")
	ErrConnectionClosed     = errors.New("connection is closed")
	ErrNotConnected         = errors.New("not connected to a peer")
	ErrSendFailed           = errors.New("failed to send message to peer")
	ErrRemoteTrustViolation = errors.New("peer sent an illegal move")
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomOccupied         = errors.New("room already has a guest")
)
