package server

import "errors"

var (
	errRoomNotFound          = errors.New("room not found")
	errRoomNotJoinable       = errors.New("room is not joinable")
	errPlayerNotFound        = errors.New("player not found")
	errRoundNotStarted       = errors.New("round not started")
	errRoundAlreadySubmitted = errors.New("round already submitted")
	errRoundStillPlaying     = errors.New("round still playing")
	errAlreadyVoted          = errors.New("vote already cast")
	errAnswerNotFound        = errors.New("answer not found")
	errAnswerNotContestable  = errors.New("answer is not contestable")
	errSyncTimeout           = errors.New("sync timeout")
)
