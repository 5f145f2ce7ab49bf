package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/bracket-machines/internal/bracket"
	"github.com/mauv0809/bracket-machines/internal/metrics"
	"github.com/mauv0809/bracket-machines/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier posts tournament announcements to a Slack channel.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
	dryRun    bool
}

// NewNotifier creates a new Notifier. With dryRun set, messages are logged instead of posted.
func NewNotifier(token, channelID string, metrics metrics.Metrics, dryRun bool) *Notifier {
	return &Notifier{
		api:       slack.New(token),
		channelID: channelID,
		metrics:   metrics,
		dryRun:    dryRun,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics, dryRun bool) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
		dryRun:    dryRun,
	}
}

func (s *Notifier) sendMessage(message slack.Message) (string, string, error) {
	if s.dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendMatchAssignment(a notifier.MatchAnnouncement) error {
	_, _, err := s.sendMessage(s.formatMatchAssignment(a))
	return err
}

func (s *Notifier) SendMatchResult(r notifier.ResultAnnouncement) error {
	_, _, err := s.sendMessage(s.formatMatchResult(r))
	return err
}

func (s *Notifier) SendRoundStarted(r notifier.RoundAnnouncement) error {
	_, _, err := s.sendMessage(s.formatRoundStarted(r))
	return err
}

func (s *Notifier) SendChampion(champion bracket.Player) error {
	_, _, err := s.sendMessage(s.formatChampion(champion))
	return err
}

func bracketLabel(side bracket.Side) string {
	switch side {
	case bracket.WinnersSide:
		return "Winners bracket"
	case bracket.LosersSide:
		return "Losers bracket"
	case bracket.FinalSide:
		return "Grand final"
	}
	return "Unplaced"
}

func versus(a notifier.MatchAnnouncement) string {
	return fmt.Sprintf("%s vs %s", a.Player1.Name(), a.Player2.Name())
}

// formatMatchAssignment tells players which machine to go to.
func (s *Notifier) formatMatchAssignment(a notifier.MatchAnnouncement) slack.Message {
	blocks := make([]slack.Block, 0, 3)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🕹️ Machine %d is ready", a.Machine), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", versus(a), true, false), nil, nil))

	contextText := fmt.Sprintf("%s · Round %d · Match %d", bracketLabel(a.Match.Bracket), a.Match.Round, a.Match.MatchNumber)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatMatchResult reports the winner and the game-by-game outcome.
func (s *Notifier) formatMatchResult(r notifier.ResultAnnouncement) slack.Message {
	blocks := make([]slack.Block, 0, 4)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏁 %s wins!", r.Winner.Name()), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	p1, p2 := r.Match.Wins()
	games := make([]string, 0, bracket.GamesPerMatch)
	for i, score := range r.Match.Scores {
		if !score.Decided() {
			continue
		}
		winner := r.Match.Player2ID
		if *score.Player1Won {
			winner = r.Match.Player1ID
		}
		name := r.Winner.Name()
		if winner == r.Loser.ID {
			name = r.Loser.Name()
		}
		games = append(games, fmt.Sprintf("Game %d: %s", i+1, name))
	}
	detailsText := fmt.Sprintf("Result: %d-%d\n%s", max(p1, p2), min(p1, p2), strings.Join(games, "\n"))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, false, false), nil, nil))

	var loserText string
	switch {
	case r.Loser.Eliminated:
		loserText = fmt.Sprintf("%s is eliminated.", r.Loser.Name())
	case r.Loser.Bracket == bracket.LosersSide:
		loserText = fmt.Sprintf("%s drops to the losers bracket.", r.Loser.Name())
	}
	if loserText != "" {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", loserText, true, false), nil, nil))
	}

	contextText := fmt.Sprintf("%s · Round %d", bracketLabel(r.Match.Bracket), r.Match.Round)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatRoundStarted lists the pairings of a new round.
func (s *Notifier) formatRoundStarted(r notifier.RoundAnnouncement) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("📣 Round %d", r.Round), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(r.Matches) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No matches this round.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	bySide := map[bracket.Side][]string{}
	for _, a := range r.Matches {
		bySide[a.Match.Bracket] = append(bySide[a.Match.Bracket], fmt.Sprintf("%d. %s", a.Match.MatchNumber, versus(a)))
	}
	for _, side := range []bracket.Side{bracket.WinnersSide, bracket.LosersSide, bracket.FinalSide} {
		lines, ok := bySide[side]
		if !ok {
			continue
		}
		text := fmt.Sprintf("*%s*\n%s", bracketLabel(side), strings.Join(lines, "\n"))
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil))
	}

	if len(r.Byes) > 0 {
		names := make([]string, len(r.Byes))
		for i, p := range r.Byes {
			names[i] = p.Name()
		}
		byeText := "Sitting out: " + strings.Join(names, ", ")
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", byeText, true, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatChampion(champion bracket.Player) slack.Message {
	headerText := slack.NewTextBlockObject("plain_text", "🏆 We have a champion! 🏆", true, false)
	text := fmt.Sprintf("Congratulations %s!", champion.Name())
	if champion.Team != "" {
		text = fmt.Sprintf("Congratulations %s (%s)!", champion.Name(), champion.Team)
	}
	return slack.NewBlockMessage(
		slack.NewHeaderBlock(headerText),
		slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, true, false), nil, nil),
	)
}
