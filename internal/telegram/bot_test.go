package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathstep/internal/i18n"
	"github.com/abhisek/mathstep/internal/tutor"
)

func TestStartCommand(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, replyWith(solutionJSON(1)))

	b.HandleUpdate(context.Background(), commandUpdate(7, "/start"))

	msgs := api.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, i18n.Lookup(i18n.TH, "bot_start"), msgs[0].Text)
	assert.Equal(t, []string{cbLang}, callbackData(msgs[0].ReplyMarkup))
}

func TestHealthAndUnknownCommands(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, replyWith(solutionJSON(1)))

	b.HandleUpdate(context.Background(), commandUpdate(7, "/health"))
	b.HandleUpdate(context.Background(), commandUpdate(7, "/frobnicate"))

	texts := api.texts()
	require.Len(t, texts, 2)
	assert.Equal(t, "✅ OK", texts[0])
	assert.True(t, strings.HasPrefix(texts[1], i18n.Lookup(i18n.TH, "bot_unknown")))
	assert.Contains(t, texts[1], "/frobnicate")
}

func TestLangCommand(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, replyWith(solutionJSON(1)))
	ctx := context.Background()

	b.HandleUpdate(ctx, commandUpdate(7, "/lang en"))
	assert.Equal(t, i18n.EN, b.Sessions().Get(7).Language())

	b.HandleUpdate(ctx, commandUpdate(7, "/lang"))
	assert.Equal(t, i18n.TH, b.Sessions().Get(7).Language())

	b.HandleUpdate(ctx, commandUpdate(7, "/lang xx"))
	assert.Equal(t, i18n.TH, b.Sessions().Get(7).Language())

	texts := api.texts()
	require.Len(t, texts, 3)
	assert.Equal(t, i18n.Lookup(i18n.EN, "bot_lang_switched"), texts[0])
	assert.Equal(t, i18n.Lookup(i18n.TH, "bot_lang_switched"), texts[1])
	assert.Contains(t, texts[2], "xx")
}

func TestTextSubmitAndReveal(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, replyWith(solutionJSON(2)))
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate(7, "2 + 2"))
	b.Wait()

	msgs := api.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, i18n.Lookup(i18n.TH, "spinner"), msgs[0].Text)

	analysis := msgs[1]
	assert.Equal(t, tgbotapi.ModeHTML, analysis.ParseMode)
	assert.Contains(t, analysis.Text, "Addition")
	assert.Contains(t, analysis.Text, "<b>2</b> and 2")
	assert.Contains(t, analysis.Text, "<code>2+2=4</code>")
	assert.Equal(t, []string{cbNext, cbNew, cbLang}, callbackData(analysis.ReplyMarkup))

	sess := b.Sessions().Get(7)
	assert.Equal(t, tutor.PhaseRevealing, sess.Phase())
	assert.Equal(t, "2 + 2", sess.ProblemText())

	var deleted bool
	for _, r := range api.requested() {
		if d, ok := r.(tgbotapi.DeleteMessageConfig); ok && d.MessageID == 1 {
			deleted = true
		}
	}
	assert.True(t, deleted, "spinner message should be removed")

	api.reset()
	b.HandleUpdate(ctx, callbackUpdate(7, 2, cbNext))
	msgs = api.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "1 / 2")
	assert.Contains(t, msgs[0].Text, "S1")
	assert.Contains(t, msgs[0].Text, "🔹")
	assert.Equal(t, []string{cbNext, cbNew, cbLang}, callbackData(msgs[0].ReplyMarkup))

	reqs := api.requested()
	require.Len(t, reqs, 2)
	assert.IsType(t, tgbotapi.CallbackConfig{}, reqs[0])
	edit, ok := reqs[1].(tgbotapi.EditMessageReplyMarkupConfig)
	require.True(t, ok)
	assert.Equal(t, 2, edit.MessageID)

	api.reset()
	b.HandleUpdate(ctx, callbackUpdate(7, 3, cbNext))
	msgs = api.messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Text, "2 / 2")
	assert.Contains(t, msgs[0].Text, "🏁")
	assert.Nil(t, msgs[0].ReplyMarkup)
	assert.Contains(t, msgs[1].Text, i18n.Lookup(i18n.TH, "all_done"))
	assert.Equal(t, []string{cbNew, cbLang}, callbackData(msgs[1].ReplyMarkup))
	assert.Equal(t, tutor.PhaseComplete, sess.Phase())

	// A stale "next" after completion changes nothing.
	api.reset()
	b.HandleUpdate(ctx, callbackUpdate(7, 3, cbNext))
	assert.Empty(t, api.messages())

	b.HandleUpdate(ctx, callbackUpdate(7, 5, cbNew))
	assert.Equal(t, tutor.ModeInput, sess.Mode())
	assert.Equal(t, []string{i18n.Lookup(i18n.TH, "bot_reset")}, api.texts())
}

func TestSubmitZeroStepsGoesStraightToDone(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, replyWith(solutionJSON(0)))

	b.HandleUpdate(context.Background(), textUpdate(7, "nothing to do"))
	b.Wait()

	texts := api.texts()
	require.Len(t, texts, 3)
	assert.Contains(t, texts[2], i18n.Lookup(i18n.TH, "all_done"))
}

func TestSubmitModelError(t *testing.T) {
	api := &fakeAPI{}
	client := tutor.ClientFunc(func(context.Context, tutor.Prompt) (string, error) {
		return "", errors.New("quota exhausted")
	})
	b := newTestBot(api, client)

	b.HandleUpdate(context.Background(), textUpdate(7, "2 + 2"))
	b.Wait()

	texts := api.texts()
	require.Len(t, texts, 2)
	assert.Equal(t, i18n.Lookup(i18n.TH, "err_generic")+": quota exhausted", texts[1])
	sess := b.Sessions().Get(7)
	assert.Equal(t, tutor.ModeInput, sess.Mode())
	assert.False(t, sess.Loading())
}

func TestSubmitUnparseableReply(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, replyWith("I think the answer is 4"))

	b.HandleUpdate(context.Background(), textUpdate(7, "2 + 2"))
	b.Wait()

	texts := api.texts()
	require.Len(t, texts, 2)
	assert.Equal(t, i18n.Lookup(i18n.TH, "err_json"), texts[1])
}

func TestSubmitWhileBusy(t *testing.T) {
	api := &fakeAPI{}
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	client := tutor.ClientFunc(func(ctx context.Context, _ tutor.Prompt) (string, error) {
		once.Do(func() { close(started) })
		<-release
		return solutionJSON(1), nil
	})
	b := newTestBot(api, client)
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate(7, "first"))
	<-started
	b.HandleUpdate(ctx, textUpdate(7, "second"))
	close(release)
	b.Wait()

	texts := api.texts()
	assert.Contains(t, texts, i18n.Lookup(i18n.TH, "bot_busy"))
	assert.Equal(t, "first", b.Sessions().Get(7).ProblemText())
}

func TestChatsAreIndependent(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, replyWith(solutionJSON(2)))
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate(1, "one"))
	b.Wait()
	b.HandleUpdate(ctx, commandUpdate(2, "/lang en"))

	assert.Equal(t, tutor.ModeResult, b.Sessions().Get(1).Mode())
	assert.Equal(t, i18n.TH, b.Sessions().Get(1).Language())
	assert.Equal(t, tutor.ModeInput, b.Sessions().Get(2).Mode())
	assert.Equal(t, i18n.EN, b.Sessions().Get(2).Language())
	assert.Equal(t, 2, b.Sessions().Len())
}

func TestLanguageSwitchKeepsInFlightAnswer(t *testing.T) {
	api := &fakeAPI{}
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	client := tutor.ClientFunc(func(ctx context.Context, _ tutor.Prompt) (string, error) {
		calls.Add(1)
		close(started)
		<-release
		return solutionJSON(1), nil
	})
	b := newTestBot(api, client)
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate(7, "2 + 2"))
	<-started
	b.HandleUpdate(ctx, callbackUpdate(7, 9, cbLang))
	b.HandleUpdate(ctx, textUpdate(7, "3 + 3"))
	close(release)
	b.Wait()

	sess := b.Sessions().Get(7)
	assert.Equal(t, i18n.EN, sess.Language())
	assert.Equal(t, tutor.ModeResult, sess.Mode())
	assert.Equal(t, "2 + 2", sess.ProblemText())
	assert.EqualValues(t, 1, calls.Load())

	texts := api.texts()
	assert.Contains(t, texts, i18n.Lookup(i18n.EN, "bot_busy"))
	assert.Contains(t, texts[len(texts)-1], "Addition")
}

func TestNewProblemDuringSolveDropsAnswerAndStaysBusy(t *testing.T) {
	api := &fakeAPI{}
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	client := tutor.ClientFunc(func(ctx context.Context, _ tutor.Prompt) (string, error) {
		calls.Add(1)
		close(started)
		<-release
		return solutionJSON(1), nil
	})
	b := newTestBot(api, client)
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate(7, "2 + 2"))
	<-started
	b.HandleUpdate(ctx, commandUpdate(7, "/new"))
	b.HandleUpdate(ctx, textUpdate(7, "3 + 3"))
	close(release)
	b.Wait()

	sess := b.Sessions().Get(7)
	assert.Equal(t, tutor.ModeInput, sess.Mode())
	assert.False(t, sess.Loading())
	assert.EqualValues(t, 1, calls.Load())

	texts := api.texts()
	assert.Contains(t, texts, i18n.Lookup(i18n.TH, "bot_busy"))
	for _, txt := range texts {
		assert.NotContains(t, txt, "Addition")
	}
}

func TestSubmitOverShownResultStartsFresh(t *testing.T) {
	api := &fakeAPI{}
	var n atomic.Int32
	client := tutor.ClientFunc(func(context.Context, tutor.Prompt) (string, error) {
		return solutionJSON(int(n.Add(1)) + 1), nil
	})
	b := newTestBot(api, client)
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate(7, "first"))
	b.Wait()
	b.HandleUpdate(ctx, callbackUpdate(7, 2, cbNext))

	b.HandleUpdate(ctx, textUpdate(7, "second"))
	b.Wait()

	sess := b.Sessions().Get(7)
	assert.Equal(t, "second", sess.ProblemText())
	assert.Zero(t, sess.VisibleSteps())
	assert.Equal(t, 3, sess.Solution().TotalSteps())
}

func TestConcurrentNextPressesRevealEachStepOnce(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, replyWith(solutionJSON(4)))
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate(7, "2 + 2"))
	b.Wait()
	api.reset()

	var wg sync.WaitGroup
	for i := range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.HandleUpdate(ctx, callbackUpdate(7, 10+i, cbNext))
		}()
	}
	wg.Wait()

	seen := map[string]int{}
	for _, txt := range api.texts() {
		for n := 1; n <= 4; n++ {
			if strings.Contains(txt, fmt.Sprintf("%d / 4", n)) {
				seen[fmt.Sprint(n)]++
			}
		}
	}
	assert.Equal(t, map[string]int{"1": 1, "2": 1, "3": 1, "4": 1}, seen)
	assert.Equal(t, tutor.PhaseComplete, b.Sessions().Get(7).Phase())
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPhotoSubmit(t *testing.T) {
	pngData := testPNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/big" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(pngData)
	}))
	defer srv.Close()

	var got tutor.Prompt
	client := tutor.ClientFunc(func(_ context.Context, p tutor.Prompt) (string, error) {
		got = p
		return solutionJSON(1), nil
	})
	api := &fakeAPI{fileURL: srv.URL}
	b := newTestBot(api, client)

	upd := tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:    &tgbotapi.Chat{ID: 7},
		Caption: "",
		Photo: []tgbotapi.PhotoSize{
			{FileID: "small", Width: 90, Height: 90},
			{FileID: "big", Width: 800, Height: 800},
		},
	}}
	b.HandleUpdate(context.Background(), upd)
	b.Wait()

	require.NotNil(t, got.Image)
	assert.Equal(t, "image/png", got.Image.MIMEType)
	assert.Equal(t, i18n.Lookup(i18n.TH, "image_fallback"), b.Sessions().Get(7).ProblemText())
}

func TestPhotoDownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not an image at all"))
	}))
	defer srv.Close()

	calls := 0
	client := tutor.ClientFunc(func(context.Context, tutor.Prompt) (string, error) {
		calls++
		return solutionJSON(1), nil
	})
	api := &fakeAPI{fileURL: srv.URL}
	b := newTestBot(api, client)

	upd := tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 7},
		Document: &tgbotapi.Document{FileID: "doc", MimeType: "image/png"},
	}}
	b.HandleUpdate(context.Background(), upd)
	b.Wait()

	assert.Zero(t, calls)
	texts := api.texts()
	require.Len(t, texts, 1)
	assert.True(t, strings.HasPrefix(texts[0], i18n.Lookup(i18n.TH, "err_image")))
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	api := &fakeAPI{
		batches: [][]tgbotapi.Update{{commandUpdate(7, "/health")}},
		onDrain: cancel,
	}
	api.batches[0][0].UpdateID = 10
	b := New(api, replyWith(solutionJSON(1)), Options{Logger: quietLogger(), PollTimeout: 1})

	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, []string{"✅ OK"}, api.texts())
	require.GreaterOrEqual(t, len(api.polls), 2)
	assert.Equal(t, 0, api.polls[0].Offset)
	assert.Equal(t, 11, api.polls[1].Offset)
	assert.Equal(t, 1, api.polls[0].Timeout)
}
