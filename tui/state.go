package tui

type state int

const (
	searchState state = iota
	loadingState
	videosState
	playState
	errorState
)
