package tournament

import (
	"github.com/charmbracelet/log"
	"github.com/mauv0809/bracket-machines/internal/bracket"
	"github.com/mauv0809/bracket-machines/internal/notifier"
	"github.com/mauv0809/bracket-machines/internal/pubsub"
)

func (t *Tournament) announcementLocked(m bracket.Match, machine int) notifier.MatchAnnouncement {
	return notifier.MatchAnnouncement{
		Match:   m.Clone(),
		Player1: t.playerLocked(m.Player1ID),
		Player2: t.playerLocked(m.Player2ID),
		Machine: machine,
	}
}

func (t *Tournament) publish(topic pubsub.EventType, data any) {
	if err := t.pubsub.SendMessage(topic, data); err != nil {
		log.Error("Failed to publish event", "topic", topic, "error", err)
	}
}

func notifyErr(kind string, err error) {
	if err != nil {
		log.Error("Failed to send notification", "notification", kind, "error", err)
	}
}

func (t *Tournament) queueRoundStarted(out *outbox, round int, matches []bracket.Match) {
	a := notifier.RoundAnnouncement{Round: round}
	ids := make([]string, len(matches))
	for i, m := range matches {
		a.Matches = append(a.Matches, t.announcementLocked(m, 0))
		ids[i] = m.ID
	}
	for _, p := range t.players {
		if p.HasBye && !p.Eliminated {
			a.Byes = append(a.Byes, p)
		}
	}
	event := pubsub.RoundAdvanced{TournamentID: t.id, Round: round, MatchIDs: ids}
	out.add(func() {
		notifyErr("round", t.notifier.SendRoundStarted(a))
		t.publish(pubsub.EventRoundAdvanced, event)
	})
}

func (t *Tournament) queueResult(out *outbox, m bracket.Match, winner, loser bracket.Player) {
	r := notifier.ResultAnnouncement{Match: m.Clone(), Winner: winner, Loser: loser}
	event := pubsub.MatchCommitted{
		TournamentID: t.id,
		MatchID:      m.ID,
		Round:        m.Round,
		Bracket:      string(m.Bracket),
		WinnerID:     winner.ID,
		LoserID:      loser.ID,
		LoserOut:     loser.Eliminated,
		CommittedAt:  t.opts.Clock.Now(),
	}
	out.add(func() {
		notifyErr("result", t.notifier.SendMatchResult(r))
		t.publish(pubsub.EventMatchCommitted, event)
	})
}

func (t *Tournament) queueChampion(out *outbox, champion bracket.Player) {
	event := pubsub.TournamentFinished{TournamentID: t.id, ChampionID: champion.ID, FinishedAt: t.opts.Clock.Now()}
	out.add(func() {
		notifyErr("champion", t.notifier.SendChampion(champion))
		t.publish(pubsub.EventTournamentFinished, event)
	})
}

func (t *Tournament) queueAssignment(out *outbox, m bracket.Match, machine int) {
	a := t.announcementLocked(m, machine)
	event := pubsub.MachineAssigned{TournamentID: t.id, MachineID: machine, MatchID: m.ID}
	out.add(func() {
		notifyErr("assignment", t.notifier.SendMatchAssignment(a))
		t.publish(pubsub.EventMachineAssigned, event)
	})
}

func (t *Tournament) queueMachineCleared(out *outbox, machine int) {
	event := pubsub.MachineAssigned{TournamentID: t.id, MachineID: machine}
	out.add(func() {
		t.publish(pubsub.EventMachineAssigned, event)
	})
}
