package players

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

var ErrUnknownBot = errors.New("unknown bot kind")

// slowBotDelay outlasts any sensible decision timeout
const slowBotDelay = 10 * time.Second

var botMu sync.RWMutex

var botConstructors = map[string]func(name string, seed int64) Bot{
	"random": func(name string, seed int64) Bot { return NewRandomBot(name, seed) },
	"hit17":  func(name string, _ int64) Bot { return NewHit17Bot(name) },
	"scaredy": func(name string, seed int64) Bot {
		return NewScaredyBot(name, seed)
	},
	"slow": func(name string, _ int64) Bot { return NewSlowBot(name, slowBotDelay) },
}

// Register adds a bot kind for NewBot, replacing any kind of the same name
func Register(kind string, ctor func(name string, seed int64) Bot) {
	botMu.Lock()
	defer botMu.Unlock()
	botConstructors[strings.ToLower(kind)] = ctor
}

// NewBot builds one of the built-in bots by kind
func NewBot(kind, name string, seed int64) (Bot, error) {
	botMu.RLock()
	ctor, ok := botConstructors[strings.ToLower(kind)]
	botMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownBot, kind, strings.Join(Kinds(), ", "))
	}
	if name == "" {
		name = kind
	}
	return ctor(name, seed), nil
}

// Kinds lists the built-in bot kinds in alphabetical order
func Kinds() []string {
	botMu.RLock()
	defer botMu.RUnlock()
	kinds := make([]string, 0, len(botConstructors))
	for k := range botConstructors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// ParseBotSpec splits "kind:name" into its parts. A bare kind is its own name.
func ParseBotSpec(spec string) (kind, name string) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) == 1 {
		return parts[0], parts[0]
	}
	return parts[0], parts[1]
}
