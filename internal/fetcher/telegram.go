// SPDX-License-Identifier: AGPL-3.0-only
package fetcher

import (
	"context"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"

	"github.com/softpaws/postharvest/internal/helpers"
	"github.com/softpaws/postharvest/internal/job"
	"github.com/softpaws/postharvest/internal/record"
)

const historyBatchSize = 100

// TelegramBackend reads channel history over MTProto with a personal
// account. It covers channels the cloud actors cannot reach and needs no
// platform token, only api_id/api_hash credentials and a one-time
// interactive login that persists in the session file.
type TelegramBackend struct {
	AppID       int
	AppHash     string
	SessionFile string
	Phone       string

	logger *zap.SugaredLogger
	web    *Client
}

func NewTelegramBackend(appID int, appHash, sessionFile, phone string, logger *zap.SugaredLogger) *TelegramBackend {
	return &TelegramBackend{
		AppID:       appID,
		AppHash:     appHash,
		SessionFile: sessionFile,
		Phone:       phone,
		logger:      logger,
	}
}

func (b *TelegramBackend) Name() string { return "telegram-session" }

// Plan gives every channel its own job so one bad channel does not sink the
// batch.
func (b *TelegramBackend) Plan(targets []Target, opts Options) ([]JobSpec, error) {
	if len(targets) == 0 {
		return nil, errors.New("no targets to scrape")
	}

	specs := make([]JobSpec, 0, len(targets))
	for _, t := range targets {
		if t.Kind != KindChannel {
			return nil, errors.Newf("telegram session backend only handles channels, got %s %q", t.Kind, t.Value)
		}
		specs = append(specs, JobSpec{
			Label:   "telegram:" + t.Value,
			Targets: []Target{t},
		})
	}
	return specs, nil
}

func (b *TelegramBackend) Execute(ctx context.Context, spec JobSpec, opts Options) (record.Collection, *job.Job, error) {
	if b.AppID == 0 || b.AppHash == "" {
		return nil, nil, &job.SubmissionError{Target: spec.Label, Err: errors.New("telegram api credentials not configured")}
	}

	channel := helpers.NormalizeChannel(spec.Targets[0].Value)

	// No remote run id exists for a session job; a local uuid keeps the job
	// addressable in history and logs.
	j := job.New(uuid.NewString(), spec.Label, b.Name())
	j.Status = job.StatusRunning

	if opts.WaitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.WaitTimeout)
		defer cancel()
	}

	client := telegram.NewClient(b.AppID, b.AppHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: b.SessionFile},
	})

	var recs record.Collection
	err := client.Run(ctx, func(ctx context.Context) error {
		flow := auth.NewFlow(termAuth{phone: b.Phone}, auth.SendCodeOptions{})
		if err := client.Auth().IfNecessary(ctx, flow); err != nil {
			return errors.Wrap(err, "telegram login")
		}

		ch, err := b.resolveChannel(ctx, client, channel)
		if err != nil {
			return err
		}

		recs, err = b.fetchHistory(ctx, client, ch, channel, opts)
		return err
	})
	if err != nil {
		j.Status = job.StatusFailed
		if ctx.Err() == context.DeadlineExceeded {
			j.Status = job.StatusTimedOut
		}
		j.Message = err.Error()
		return nil, j, &job.JobFailedError{RunID: j.RunID, Status: j.Status, Message: err.Error()}
	}

	j.Status = job.StatusSucceeded
	b.logger.Infow("channel history fetched", "channel", channel, "messages", len(recs))
	return recs, j, nil
}

func (b *TelegramBackend) resolveChannel(ctx context.Context, client *telegram.Client, username string) (*tg.Channel, error) {
	res, err := client.API().ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "resolving channel %s", username)
	}

	for _, c := range res.Chats {
		if ch, ok := c.(*tg.Channel); ok {
			return ch, nil
		}
	}
	return nil, errors.Newf("%s is not a channel", username)
}

func (b *TelegramBackend) fetchHistory(ctx context.Context, client *telegram.Client, ch *tg.Channel, channel string, opts Options) (record.Collection, error) {
	peer := &tg.InputPeerChannel{
		ChannelID:  ch.ID,
		AccessHash: ch.AccessHash,
	}

	var (
		recs     record.Collection
		offsetID = 0
	)

	for opts.Limit <= 0 || len(recs) < opts.Limit {
		resp, err := b.getHistory(ctx, client, peer, offsetID)
		if err != nil {
			return nil, err
		}

		var messages []tg.MessageClass
		switch v := resp.(type) {
		case *tg.MessagesChannelMessages:
			messages = v.Messages
		case *tg.MessagesMessages:
			messages = v.Messages
		default:
			return recs, nil
		}
		if len(messages) == 0 {
			return recs, nil
		}

		for _, m := range messages {
			msg, ok := m.(*tg.Message)
			if !ok {
				continue
			}
			offsetID = msg.ID

			msgTime := time.Unix(int64(msg.Date), 0).UTC()
			if !opts.DateFrom.IsZero() && msgTime.Before(opts.DateFrom) {
				// History pages newest first, everything past here is older.
				return recs, nil
			}
			if !opts.DateTo.IsZero() && msgTime.After(opts.DateTo) {
				continue
			}

			recs = append(recs, b.buildRecord(msg, channel, msgTime, opts))
			if opts.Limit > 0 && len(recs) >= opts.Limit {
				return recs, nil
			}
		}
	}

	return recs, nil
}

// getHistory pages channel history with flood-wait and quadratic backoff
// retries.
func (b *TelegramBackend) getHistory(ctx context.Context, client *telegram.Client, peer tg.InputPeerClass, offsetID int) (tg.MessagesMessagesClass, error) {
	for attempt := 1; attempt <= 5; attempt++ {
		resp, err := client.API().MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer:     peer,
			OffsetID: offsetID,
			Limit:    historyBatchSize,
		})
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if wait, isFlood := telegram.AsFloodWait(err); isFlood {
			if wait > 60*time.Second {
				return nil, errors.Newf("flood wait too long: %v", wait)
			}
			b.logger.Warnw("flood wait", "wait", wait)
			time.Sleep(wait)
			continue
		}

		if attempt == 5 {
			return nil, errors.Wrap(err, "messages.getHistory failed after retries")
		}
		time.Sleep(time.Duration(attempt*attempt) * time.Second)
	}
	return nil, errors.New("messages.getHistory failed after retries")
}

func (b *TelegramBackend) buildRecord(msg *tg.Message, channel string, msgTime time.Time, opts Options) record.Record {
	r := record.Record{
		ID:        strconv.Itoa(msg.ID),
		Source:    channel,
		Network:   "Telegram",
		Date:      msgTime.Format(time.RFC3339),
		Text:      msg.Message,
		Views:     msg.Views,
		Forwards:  msg.Forwards,
		MediaURLs: []string{},
	}

	if replies, ok := msg.GetReplies(); ok {
		r.Replies = replies.Replies
	}
	if _, ok := msg.GetMedia(); ok {
		r.HasMedia = true
	}

	r.URL, _ = helpers.ConvPostToURL("Telegram", channel, r.ID)

	if opts.EnrichViews && r.Views == 0 {
		if b.web == nil {
			b.web = NewClient(webStatsTimeout)
		}
		if views, err := b.web.EmbedViews(channel, r.ID); err == nil {
			r.Views = views
		}
	}

	return r
}
