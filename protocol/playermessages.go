package protocol

// Decision is a bot's answer to "hit or pass?"
type Decision int

const (
	Hit Decision = iota
	Pass
)

func (d Decision) String() string {
	switch d {
	case Hit:
		return "hit"
	case Pass:
		return "pass"
	}
	return "unknown"
}

// Status is the lifecycle position of a player within a round
type Status int

const (
	Active Status = iota
	Passed
	Busted
	Frozen
)

var statusNames = []string{"active", "passed", "busted", "frozen"}

func (s Status) String() string {
	if int(s) < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// TableauView is a read-only copy of one player's round state
type TableauView struct {
	PlayerID        string   `json:"playerID"`
	NumberCards     []int    `json:"numberCards"`
	Modifiers       []string `json:"modifiers"`
	HasSecondChance bool     `json:"hasSecondChance"`
	Status          Status   `json:"status"`
	Score           int      `json:"score"`
}

// DecisionContext is the snapshot a bot decides from.
// It is rebuilt before every decision; bots receive copies only.
type DecisionContext struct {
	GameID           string                 `json:"gameID"`
	Round            int                    `json:"round"`
	Self             TableauView            `json:"self"`
	Opponents        map[string]TableauView `json:"opponents"`
	DeckRemaining    int                    `json:"deckRemaining"`
	CumulativeScores map[string]int         `json:"cumulativeScores"`
	TargetScore      int                    `json:"targetScore"`
}

// MyScore is the acting player's cumulative score before this round
func (c DecisionContext) MyScore() int {
	return c.CumulativeScores[c.Self.PlayerID]
}

// LeaderScore is the highest cumulative score among opponents
func (c DecisionContext) LeaderScore() int {
	best := 0
	for id, s := range c.CumulativeScores {
		if id != c.Self.PlayerID && s > best {
			best = s
		}
	}
	return best
}
