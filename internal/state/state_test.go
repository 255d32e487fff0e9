package state_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/leighmacdonald/squad-stats/internal/squad/events"
	"github.com/leighmacdonald/squad-stats/internal/state"
	"github.com/stretchr/testify/require"
)

func ts(sec int) string {
	return events.FormatTimestamp(time.Date(2021, 1, 1, 0, 0, sec, 0, time.UTC))
}

func mapLoad(sec int, name string) string {
	return fmt.Sprintf("[%s][  0]LogWorld: StartLoadingDestination to: /Game/Maps/%s", ts(sec), name)
}

func matchState(sec int, to string) string {
	return fmt.Sprintf("[%s][  0]LogGameState: Match State Changed from InProgress to %s", ts(sec), to)
}

func spawn(sec int, name string, role string) string {
	return fmt.Sprintf("[%s][  1]LogSquadTrace: [DedicatedServer]ASQPlayerController::SetCurrentRole(): On Server PC=%s NewRole=%s",
		ts(sec), name, role)
}

func changeState(sec int, name string) string {
	return fmt.Sprintf("[%s][  1]LogSquadTrace: [DedicatedServer]ASQPlayerController::ChangeState(): PC=%s OldState=Inactive NewState=Playing",
		ts(sec), name)
}

func damage(sec int, target string, amount float64, shooter string) string {
	return fmt.Sprintf("[%s][  2]LogSquad: Player:%s ActualDamage=%.6f from %s caused by Rifle", ts(sec), target, amount, shooter)
}

func wound(sec int, target string, shooter string) string {
	return fmt.Sprintf("[%s][  2]LogSquadTrace: [DedicatedServer]ASQSoldier::Wound(): Player:%s KillingDamage=100.000000 from %s caused by Rifle",
		ts(sec), target, shooter)
}

func revive(sec int, reviver string, revivee string) string {
	return fmt.Sprintf("[%s][  3]LogSquad: %s has revived %s.", ts(sec), reviver, revivee)
}

func fold(t *testing.T, initial state.State, lines ...string) state.State {
	t.Helper()

	acc := state.NewAccumulator(initial, events.NewParser(), true)
	for _, line := range lines {
		require.NoError(t, acc.Send(line), line)
	}

	return acc.State()
}

func player(t *testing.T, current state.State, name string) state.Player {
	t.Helper()

	game, err := current.CurrentGame()
	require.NoError(t, err)

	found, ok := game.Players[name]
	require.True(t, ok, "player %s missing", name)

	return found
}

func TestNew(t *testing.T) {
	initial := state.New()
	require.Empty(t, initial.Games)
	require.Empty(t, initial.Names)
	require.Equal(t, "1985-09-21T05:00:00Z", initial.CurrentStart.Format(time.RFC3339))
	require.Equal(t, initial.CurrentStart, initial.LastTimestamp)

	_, err := initial.Current()
	require.ErrorIs(t, err, state.ErrSessionNotFound)
}

func TestMapLoad(t *testing.T) {
	current := fold(t, state.New(),
		"[2021.01.01-00.00.00:000][0]LogWorld: StartLoadingDestination to: /Game/Maps/Narva")

	require.Len(t, current.Games, 1)
	require.Equal(t, "Narva", current.Games[0].Map)
	require.Empty(t, current.Games[0].Players)

	game, err := current.CurrentGame()
	require.NoError(t, err)
	require.Equal(t, "Narva", game.Map)
	require.Equal(t, game.StartTime, current.CurrentStart)
}

func TestSpawn(t *testing.T) {
	current := fold(t, state.New(), mapLoad(0, "Narva"), spawn(1, "Alice", "Rifleman"))

	alice := player(t, current, "Alice")
	require.InDelta(t, 100.0, alice.HitPoints, 0.0001)
	require.Equal(t, []string{"Rifleman"}, alice.Classes)
	require.Equal(t, state.Inactive, alice.State)
	require.NotNil(t, alice.LastSpawn)

	current = fold(t, current, spawn(2, "Alice", "Rifleman"))
	alice = player(t, current, "Alice")
	require.Equal(t, state.Playing, alice.State)
	require.InDelta(t, 100.0, alice.HitPoints, 0.0001)
	require.Equal(t, []string{"Rifleman"}, alice.Classes)
}

func TestSpawnClassUnion(t *testing.T) {
	orders := [][]string{
		{"Rifleman", "Medic", "SquadLeader"},
		{"SquadLeader", "Rifleman", "Medic", "Rifleman"},
		{"Medic", "Medic", "SquadLeader", "Rifleman"},
	}

	for _, roles := range orders {
		lines := []string{mapLoad(0, "Narva")}
		for idx, role := range roles {
			lines = append(lines, spawn(idx+1, "Alice", role))
		}

		current := fold(t, state.New(), lines...)
		require.Equal(t, []string{"Medic", "Rifleman", "SquadLeader"}, player(t, current, "Alice").Classes)
	}
}

func TestSpawnWithoutSession(t *testing.T) {
	acc := state.NewAccumulator(state.New(), events.NewParser(), true)
	require.ErrorIs(t, acc.Send(spawn(1, "Alice", "Rifleman")), state.ErrSessionNotFound)
}

func setup() []string {
	return []string{
		mapLoad(0, "Narva"),
		changeState(1, "Alice"),
		changeState(1, "Bob"),
		spawn(2, "Alice", "Rifleman"),
		spawn(2, "Bob", "Medic"),
	}
}

func TestDamage(t *testing.T) {
	current := fold(t, state.New(), append(setup(),
		"[2021.01.01-00.00.10:000][0]LogSquad: Player:Alice ActualDamage=25.0 from Bob caused by Rifle")...)

	alice := player(t, current, "Alice")
	require.InDelta(t, 75.0, alice.HitPoints, 0.0001)
	require.NotNil(t, alice.LastDamaged)
	require.Equal(t, "Bob", *alice.LastDamaged)

	// Hit points are never clamped.
	current = fold(t, current, damage(11, "Alice", 100, "Bob"))
	require.InDelta(t, -25.0, player(t, current, "Alice").HitPoints, 0.0001)
}

func TestDamageTaggedName(t *testing.T) {
	current := fold(t, state.New(), append(setup(), damage(10, "[CLAN] Alice", 10, "[FOE] Bob"))...)

	alice := player(t, current, "Alice")
	require.InDelta(t, 90.0, alice.HitPoints, 0.0001)
	require.Equal(t, "[FOE] Bob", *alice.LastDamaged)
	require.Equal(t, "[CLAN] Alice", *current.Names[0].Full)

	// The kill is attributed to the short name of the shooter.
	current = fold(t, current, wound(11, "[CLAN] Alice", "[FOE] Bob"))
	require.Equal(t, map[string]int{"Bob": 1}, player(t, current, "Alice").KilledBy)
	require.Equal(t, map[string]int{"Alice": 1}, player(t, current, "Bob").Killed)
}

func TestDamageNullShooter(t *testing.T) {
	current := fold(t, state.New(), append(setup(),
		damage(10, "Alice", 10, "Bob"),
		damage(11, "Alice", 10, events.NullEntity),
		damage(12, "Alice", 10, events.NullEntity),
	)...)

	alice := player(t, current, "Alice")
	require.Equal(t, "Bob", *alice.LastDamaged)
	require.InDelta(t, 70.0, alice.HitPoints, 0.0001)

	current = fold(t, state.New(), append(setup(), damage(10, "Alice", 10, events.NullEntity))...)
	require.Nil(t, player(t, current, "Alice").LastDamaged)
}

func TestDamageUnknownPlayer(t *testing.T) {
	acc := state.NewAccumulator(state.New(), events.NewParser(), true)
	for _, line := range []string{mapLoad(0, "Narva"), changeState(1, "Alice")} {
		require.NoError(t, acc.Send(line))
	}

	before := acc.State()
	require.ErrorIs(t, acc.Send(damage(2, "Alice", 10, "Bob")), state.ErrUnknownPlayer)
	require.Equal(t, before, acc.State())

	require.ErrorIs(t, acc.Send(damage(3, "Charlie", 10, "Bob")), state.ErrUnknownPlayer)
}

func TestNonStrictSkips(t *testing.T) {
	acc := state.NewAccumulator(state.New(), events.NewParser(), false)
	for _, line := range append(setup(), damage(10, "Charlie", 10, "Bob"), damage(11, "Alice", 10, "Bob")) {
		require.NoError(t, acc.Send(line))
	}

	lines, skipped := acc.Lines()
	require.Equal(t, 7, lines)
	require.Equal(t, 1, skipped)
	require.InDelta(t, 90.0, player(t, acc.State(), "Alice").HitPoints, 0.0001)
	require.Equal(t, time.Date(2021, 1, 1, 0, 0, 11, 0, time.UTC), acc.State().LastTimestamp)
}

func TestWound(t *testing.T) {
	current := fold(t, state.New(), append(setup(), damage(10, "Alice", 25, "Bob"), wound(11, "Alice", "Bob"))...)

	alice := player(t, current, "Alice")
	bob := player(t, current, "Bob")
	require.Equal(t, 1, bob.Killed["Alice"])
	require.Equal(t, 1, alice.KilledBy["Bob"])
	require.Nil(t, alice.LastDamaged)
	require.NotNil(t, alice.LastDown)
	require.Equal(t, time.Date(2021, 1, 1, 0, 0, 11, 0, time.UTC), *alice.LastDown)
}

func TestWoundWithoutDamager(t *testing.T) {
	current := fold(t, state.New(), append(setup(), wound(10, "Alice", "Bob"))...)

	alice := player(t, current, "Alice")
	require.Empty(t, alice.KilledBy)
	require.Empty(t, player(t, current, "Bob").Killed)
	require.NotNil(t, alice.LastDown)
}

func TestWoundSelf(t *testing.T) {
	current := fold(t, state.New(), append(setup(), damage(10, "Alice", 25, "Alice"), wound(11, "Alice", "Alice"))...)

	alice := player(t, current, "Alice")
	require.Equal(t, map[string]int{"Alice": 1}, alice.Killed)
	require.Equal(t, map[string]int{"Alice": 1}, alice.KilledBy)
}

func TestRevive(t *testing.T) {
	current := fold(t, state.New(), append(setup(),
		damage(10, "Alice", 99, "Bob"),
		"[2021.01.01-00.00.12:000][0]LogSquad: Bob has revived Alice.")...)

	alice := player(t, current, "Alice")
	bob := player(t, current, "Bob")
	require.InDelta(t, 5.0, alice.HitPoints, 0.0001)
	require.Equal(t, 1, bob.Revived["Alice"])
	require.Equal(t, map[string]int{"Alice": 1}, alice.RevivedBy)

	unknown := fold(t, current, revive(13, "Charlie", "Alice"))
	require.Equal(t, alice, player(t, unknown, "Alice"))
}

func TestStaleLines(t *testing.T) {
	current := fold(t, state.New(), append(setup(), damage(10, "Alice", 10, "Bob"))...)

	stale := fold(t, current,
		damage(5, "Alice", 10, "Bob"),
		spawn(5, "Carol", "Rifleman"),
		mapLoad(5, "Yehorivka"),
		revive(5, "Bob", "Alice"),
	)
	require.Equal(t, current, stale)

	// Equal timestamps are still processed.
	same := fold(t, current, damage(10, "Alice", 10, "Bob"))
	require.InDelta(t, 80.0, player(t, same, "Alice").HitPoints, 0.0001)
}

func TestWatermark(t *testing.T) {
	current := fold(t, state.New(), mapLoad(0, "Narva"),
		"[2021.01.01-00.00.30:000][0]LogNet: something unrelated",
		"not a log line at all",
		"[2021.99.01-00.00.50:000][0]LogWorld: bad timestamp")

	require.Equal(t, time.Date(2021, 1, 1, 0, 0, 30, 0, time.UTC), current.LastTimestamp)
}

func TestSessionBoundary(t *testing.T) {
	current := fold(t, state.New(), append(setup(), damage(10, "Alice", 10, "Bob"))...)
	players := current.Games[0].Players

	ended := fold(t, current, matchState(20, events.MatchStatePostMatch))
	require.Empty(t, ended.Names)
	require.Equal(t, players, ended.Games[0].Players)
	require.NotNil(t, ended.Games[0].EndTime)

	// Other transitions are ignored.
	ignored := fold(t, current, matchState(20, "InProgress"))
	require.Equal(t, current.Names, ignored.Names)
	require.Nil(t, ignored.Games[0].EndTime)

	next := fold(t, ended, mapLoad(30, "Yehorivka"), changeState(31, "Alice"), spawn(32, "Alice", "Medic"))
	require.Len(t, next.Games, 2)
	require.Equal(t, players, next.Games[0].Players)
	require.Equal(t, "Yehorivka", next.Games[1].Map)
	require.Len(t, next.Games[1].Players, 1)
}

func TestPostMatchWithoutSession(t *testing.T) {
	current := fold(t, state.New(), matchState(1, events.MatchStatePostMatch))
	require.Empty(t, current.Games)
	require.Equal(t, time.Date(2021, 1, 1, 0, 0, 1, 0, time.UTC), current.LastTimestamp)
}

func TestImmutable(t *testing.T) {
	before := fold(t, state.New(), append(setup(), damage(10, "Alice", 10, "Bob"))...)
	alice := player(t, before, "Alice")

	after := fold(t, before, damage(11, "Alice", 50, "Bob"), wound(12, "Alice", "Bob"),
		revive(13, "Bob", "Alice"), changeState(14, "Carol"))

	require.Equal(t, alice, player(t, before, "Alice"))
	require.Empty(t, player(t, before, "Bob").Killed)
	require.Len(t, before.Names, 2)
	require.NotEqual(t, alice, player(t, after, "Alice"))
}

func TestRestore(t *testing.T) {
	current := fold(t, state.New(), mapLoad(0, "Narva"), mapLoad(10, "Yehorivka"))

	decoded := state.State{
		Games:         current.Games,
		CurrentStart:  current.CurrentStart,
		LastTimestamp: current.LastTimestamp,
		Names:         current.Names,
	}.Restore()

	idx, err := decoded.Current()
	require.NoError(t, err)
	require.Equal(t, 1, idx)

	missing := state.State{Games: current.Games, CurrentStart: state.Epoch}.Restore()
	_, errMissing := missing.Current()
	require.ErrorIs(t, errMissing, state.ErrSessionNotFound)
}
