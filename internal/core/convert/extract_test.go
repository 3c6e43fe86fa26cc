package convert

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"rcip-agent/internal/core/ai/provider"
	"rcip-agent/internal/core/ai/service"
	"rcip-agent/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator is a scriptable text-generation backend. Each call consumes
// the next scripted reply.
type fakeGenerator struct {
	replies []fakeReply
	calls   int
}

type fakeReply struct {
	content string
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	if f.calls >= len(f.replies) {
		return nil, errNoMoreReplies
	}
	reply := f.replies[f.calls]
	f.calls++
	if reply.err != nil {
		return nil, reply.err
	}
	return &provider.Response{Content: reply.content}, nil
}

func (f *fakeGenerator) Model() string          { return "fake-model" }
func (f *fakeGenerator) Timeout() time.Duration { return time.Second }

func newExtractorWith(replies ...fakeReply) (*Extractor, *fakeGenerator) {
	gen := &fakeGenerator{replies: replies}
	return NewExtractor(service.NewService(gen, nil), 40), gen
}

// rawCakeText is just long enough to clear the minimum-length gate.
const rawCakeText = "Ingredients: 2 eggs, 300g flour. Steps: 1. Mix. 2. Bake 20 minutes."

const validReply = `Here is the recipe you asked for:
{"name":"Simple Cake","description":"a cake","author":"","ingredients":[{"name":"eggs","amount":"2"},{"name":"flour","amount":"300g"}],"steps":[{"number":1,"instruction":"Mix.","time":""},{"number":2,"instruction":"Bake.","time":"20 minutes"}]}
Enjoy!`

func TestExtractEmptyInputNoNetworkCall(t *testing.T) {
	extractor, gen := newExtractorWith()

	_, err := extractor.Extract(context.Background(), "", "Test")

	var ee *common.ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, common.KindEmptyInput, ee.Kind)
	assert.Equal(t, 0, gen.calls, "no network call for empty input")
}

func TestExtractTooShortInput(t *testing.T) {
	extractor, gen := newExtractorWith()

	_, err := extractor.Extract(context.Background(), "flour, eggs", "Test")

	assert.Equal(t, common.KindEmptyInput, common.KindOf(err))
	assert.Equal(t, 0, gen.calls)
}

func TestExtractIsolatesStructuredBlock(t *testing.T) {
	extractor, _ := newExtractorWith(fakeReply{content: validReply})

	candidate, err := extractor.Extract(context.Background(), rawCakeText, "Simple Cake")
	require.NoError(t, err)

	assert.Equal(t, "Simple Cake", candidate.Name)
	require.Len(t, candidate.Ingredients, 2)
	assert.Equal(t, "eggs", candidate.Ingredients[0].Name)
	assert.Equal(t, "flour", candidate.Ingredients[1].Name)
	require.Len(t, candidate.Steps, 2)
	assert.Equal(t, "20 minutes", candidate.Steps[1].Time)
}

func TestExtractRepairsUnquotedKeys(t *testing.T) {
	reply := `{name:"Soup",ingredients:[{name:"water",amount:"1l"}],steps:[{number:1,instruction:"Boil.",time:""}]}`
	extractor, _ := newExtractorWith(fakeReply{content: reply})

	candidate, err := extractor.Extract(context.Background(), rawCakeText, "Soup")
	require.NoError(t, err)
	assert.Equal(t, "Soup", candidate.Name)
}

func TestExtractNoStructuredBlock(t *testing.T) {
	extractor, _ := newExtractorWith(fakeReply{content: "Sorry, I can't help with that."})

	_, err := extractor.Extract(context.Background(), rawCakeText, "Test")
	assert.Equal(t, common.KindUnparsableResponse, common.KindOf(err))
}

func TestExtractMissingRequiredFields(t *testing.T) {
	reply := `{"name":"Empty","ingredients":[],"steps":[]}`
	extractor, _ := newExtractorWith(fakeReply{content: reply})

	_, err := extractor.Extract(context.Background(), rawCakeText, "Test")
	assert.Equal(t, common.KindUnparsableResponse, common.KindOf(err))
}

func TestExtractServiceFailure(t *testing.T) {
	extractor, _ := newExtractorWith(fakeReply{err: fmt.Errorf("connection refused")})

	_, err := extractor.Extract(context.Background(), rawCakeText, "Test")
	assert.Equal(t, common.KindServiceUnavailable, common.KindOf(err))
}

func TestExtractEmptyCompletionIsUnparsable(t *testing.T) {
	extractor, _ := newExtractorWith(fakeReply{err: provider.ErrEmptyCompletion})

	_, err := extractor.Extract(context.Background(), rawCakeText, "Test")
	assert.Equal(t, common.KindUnparsableResponse, common.KindOf(err))
}

func TestExtractFallsBackToRequestedName(t *testing.T) {
	reply := `{"name":"","ingredients":[{"name":"water","amount":""}],"steps":[{"number":1,"instruction":"Boil.","time":""}]}`
	extractor, _ := newExtractorWith(fakeReply{content: reply})

	candidate, err := extractor.Extract(context.Background(), rawCakeText, "Plain Water")
	require.NoError(t, err)
	assert.Equal(t, "Plain Water", candidate.Name)
}

var errNoMoreReplies = errors.New("fake generator ran out of replies")
