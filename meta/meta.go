// meta/meta.go
package meta

import "time"

// PLAYERS defines the seats of a default game, one agent type per seat.
var PLAYERS = []string{"human", "tricks", "tricks"}

// TRICKS defines the number of cards dealt to each player per round.
const TRICKS = 9

// ROUNDS defines how many deals make up a game.
const ROUNDS = 1

// GAMES defines how many games are played in a session.
const GAMES = 10

// DETERMINIZATIONS defines the number of sampled worlds per search.
const DETERMINIZATIONS = 1000

// DESCENTS defines the tree descents run on each determinization.
const DESCENTS = 1

// WORKERS defines the number of goroutines growing trees in parallel.
const WORKERS = 1

// DURATION bounds a single search; zero means no bound.
const DURATION = time.Duration(0)

// LOG_LEVEL defines the default zerolog level.
const LOG_LEVEL = "info"
