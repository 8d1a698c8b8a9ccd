package connection

// Routes and query keys shared by the server and the client.
const (
	PathTreasureHunt = "/treasurehunt"
	PathPeers        = "/peers"
	PathHealth       = "/health"

	URLQuerySessionIDKeyword   = "session"
	URLQueryGameUuidKeyword    = "game"
	URLQueryDisplayNameKeyword = "name"
	URLQueryDetailsKeyword     = "details"

	// Carries the session id on the upgrade response so that
	// the text protocol stays untouched.
	HeaderSessionID = "X-Session-Id"
)
