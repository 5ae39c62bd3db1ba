package invite_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/invite"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/testutil"
)

func TestWorker_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := &fakeMailer{}
	svc, queue := newService(mailer)
	job := invite.Job{StudentID: "42", Invite: invite.Invite{Email: "awe@mvjce.edu.in", Name: "Awe", RegistrationLink: "http://x"}}
	body, err := json.Marshal(job)
	require.NoError(t, err)

	// the same job twice, then garbage
	for _, msg := range []core.Message{
		{Type: invite.MessageType, Body: body},
		{Type: invite.MessageType, Body: body},
		{Type: invite.MessageType, Body: []byte("{")},
	} {
		require.NoError(t, queue.Publish(ctx, msg))
	}

	outcomes := make(chan invite.Outcome, 3)
	worker := invite.NewWorker(svc, queue, testutil.Logger(testutil.Config()), func(o invite.Outcome) { outcomes <- o })
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	var got []invite.Outcome
	for len(got) < 3 {
		select {
		case o := <-outcomes:
			got = append(got, o)
		case <-time.After(5 * time.Second):
			t.Fatalf("worker stalled; outcomes so far %v", got)
		}
	}
	assert.Equal(t, []invite.Outcome{invite.Sent, invite.AlreadySent, invite.Failed}, got)
	assert.Equal(t, 1, mailer.count())

	cancel()
	select {
	case err = <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_Handle(t *testing.T) {
	ctx := context.Background()
	mailer := &fakeMailer{err: errors.New("boom")}
	svc, _ := newService(mailer)
	worker := invite.NewWorker(svc, nil, testutil.Logger(testutil.Config()), nil)

	body, err := json.Marshal(invite.Job{StudentID: "1", Invite: invite.Invite{Email: "awe@mvjce.edu.in", Name: "Awe", RegistrationLink: "http://x"}})
	require.NoError(t, err)

	assert.Equal(t, invite.Failed, worker.Handle(ctx, core.Message{Type: invite.MessageType, Body: body}))
	assert.Equal(t, invite.Failed, worker.Handle(ctx, core.Message{Type: "other", Body: body}))

	body, err = json.Marshal(invite.Job{StudentID: "2"})
	require.NoError(t, err)
	assert.Equal(t, invite.Skipped, worker.Handle(ctx, core.Message{Type: invite.MessageType, Body: body}))
}
