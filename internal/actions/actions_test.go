// File: internal/actions/actions_test.go
package actions

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/concierge-cli/internal/axtree"
	"github.com/xkilldash9x/concierge-cli/internal/chain"
	"github.com/xkilldash9x/concierge-cli/internal/config"
	"github.com/xkilldash9x/concierge-cli/internal/llmclient"
	"github.com/xkilldash9x/concierge-cli/internal/textpage"
)

type runeTokenizer struct{}

func (runeTokenizer) Encode(text string) []int {
	runes := []rune(text)
	out := make([]int, len(runes))
	for i, r := range runes {
		out[i] = int(r)
	}
	return out
}

func (runeTokenizer) Decode(tokens []int) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteRune(rune(tok))
	}
	return sb.String()
}

type fakePage struct {
	url       string
	tree      *axtree.Tree
	navErr    error
	navigated []string
	tapped    []cdp.BackendNodeID
	typed     []string
	backs     int
	reloads   int
	pageNum   int
}

func (f *fakePage) Navigate(_ context.Context, rawURL string) error {
	if f.navErr != nil {
		return f.navErr
	}
	f.navigated = append(f.navigated, rawURL)
	return nil
}
func (f *fakePage) Back(context.Context) error   { f.backs++; return nil }
func (f *fakePage) Reload(context.Context) error { f.reloads++; return nil }
func (f *fakePage) TypeIn(_ context.Context, text string) error {
	f.typed = append(f.typed, text)
	return nil
}
func (f *fakePage) Tap(_ context.Context, backendID cdp.BackendNodeID) error {
	f.tapped = append(f.tapped, backendID)
	return nil
}
func (f *fakePage) Snapshot(context.Context) (*axtree.Tree, error) {
	if f.tree == nil {
		return nil, errors.New("no page loaded")
	}
	return f.tree, nil
}
func (f *fakePage) CurrentURL(context.Context) (string, error) { return f.url, nil }
func (f *fakePage) PageNum() int {
	if f.pageNum == 0 {
		return 1
	}
	return f.pageNum
}
func (f *fakePage) SetPageNum(n int) { f.pageNum = n }

type fakeClient struct {
	completion *llmclient.Completion
	err        error
}

func (f *fakeClient) Complete(ctx context.Context, _ []chain.ChatMessage) (*llmclient.Completion, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return f.completion, f.err
}

func simpleTree() *axtree.Tree {
	tree := &axtree.Tree{Root: axtree.NoNode}
	link := tree.Add(axtree.Node{Role: "link", Name: "Checkout", Visible: true, BackendID: 42,
		Destination: "https://shop.example.com/checkout/step-one-of-many-pages"})
	tree.Root = tree.Add(axtree.Node{Role: "RootWebArea", Name: "Cart", Visible: true,
		Children: []axtree.NodeID{link}})
	return tree
}

func testEnv(page *fakePage, fast llmclient.Client) *Env {
	return &Env{
		Page:      page,
		Paginator: textpage.New(runeTokenizer{}),
		Fast:      fast,
		Cfg: config.AgentConfig{
			MaxAIMessages:        5,
			PageTokenLength:      1000,
			URLTruncationLength:  40,
			FindInputTokenLimit:  200,
			FindResultTokenLimit: 50,
		},
		Logger: zap.NewNop(),
	}
}

func TestRegistryVocabulary(t *testing.T) {
	r := NewRegistry(testEnv(&fakePage{}, nil))

	assert.True(t, r.Recognized("goto_url"))
	assert.True(t, r.Recognized("CLICK_ON"))
	assert.False(t, r.Recognized("page_down"))

	assert.True(t, r.Multiline("type_in"))
	assert.False(t, r.Multiline("goto_url"))
}

func TestGotoURLAttachesCommonPayload(t *testing.T) {
	page := &fakePage{url: "https://shop.example.com/cart", tree: simpleTree()}
	r := NewRegistry(testEnv(page, nil))

	action, ok := r.Get("goto_url")
	require.True(t, ok)

	result, err := action.Execute(context.Background(), "shop.example.com/cart")
	require.NoError(t, err)
	require.NotNil(t, result)

	outcome, _ := result.Params.Get("Outcome")
	assert.Contains(t, outcome, "Navigated")
	url, _ := result.Params.Get("Page URL")
	assert.Equal(t, "shop.example.com/cart", url)
	num, _ := result.Params.Get("Page Number")
	assert.Equal(t, "1/1", num)
	text, _ := result.Params.Get("Page Text")
	assert.Contains(t, text, "{link: Checkout}")
	// Paged view omits the destination URL.
	assert.NotContains(t, text, "checkout/step-one")
	notice, _ := result.Params.Get("Notice")
	assert.Contains(t, notice, "find_in_page_text")
}

func TestGotoURLFailureStillReturnsPayload(t *testing.T) {
	page := &fakePage{url: "https://shop.example.com/cart", tree: simpleTree(), navErr: errors.New("dns failure")}
	r := NewRegistry(testEnv(page, nil))

	action, _ := r.Get("goto_url")
	result, err := action.Execute(context.Background(), "bad.example.com")
	require.NoError(t, err)
	require.NotNil(t, result)

	errField, _ := result.Params.Get("Error")
	assert.Contains(t, errField, "dns failure")
	assert.True(t, result.Params.Has("Page Text"))
}

func TestClickOnResolvesAndTaps(t *testing.T) {
	page := &fakePage{url: "https://shop.example.com/cart", tree: simpleTree()}
	r := NewRegistry(testEnv(page, nil))

	action, _ := r.Get("click_on")
	result, err := action.Execute(context.Background(), "link: Checkout")
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Len(t, page.tapped, 1)
	assert.Equal(t, cdp.BackendNodeID(42), page.tapped[0])
	outcome, _ := result.Params.Get("Outcome")
	assert.Contains(t, outcome, "Clicked")
}

func TestClickOnElementNotFound(t *testing.T) {
	page := &fakePage{url: "https://shop.example.com/cart", tree: simpleTree()}
	r := NewRegistry(testEnv(page, nil))

	action, _ := r.Get("click_on")
	result, err := action.Execute(context.Background(), "button: Totally Absent Thing Here")
	require.NoError(t, err)
	require.NotNil(t, result)

	errField, _ := result.Params.Get("Error")
	assert.Contains(t, errField, "element not found")
	assert.Empty(t, page.tapped)
}

func TestTypeInDelegates(t *testing.T) {
	page := &fakePage{url: "https://shop.example.com/cart", tree: simpleTree()}
	r := NewRegistry(testEnv(page, nil))

	action, _ := r.Get("type_in")
	result, err := action.Execute(context.Background(), "hello world")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, []string{"hello world"}, page.typed)
}

func TestSleepExtractsFirstInteger(t *testing.T) {
	page := &fakePage{url: "https://shop.example.com/cart", tree: simpleTree()}
	r := NewRegistry(testEnv(page, nil))

	action, _ := r.Get("sleep")
	result, err := action.Execute(context.Background(), "wait 0 more seconds (then 99)")
	require.NoError(t, err)
	require.NotNil(t, result)

	outcome, _ := result.Params.Get("Outcome")
	assert.Contains(t, outcome, "Slept 0 seconds")
}

func TestSleepForeverIsBlocking(t *testing.T) {
	page := &fakePage{url: "https://shop.example.com/cart", tree: simpleTree()}
	r := NewRegistry(testEnv(page, nil))

	action, _ := r.Get("sleep")
	result, err := action.Execute(context.Background(), "forever")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Blocking)
}

func TestSleepInterruptedIsNotAnError(t *testing.T) {
	page := &fakePage{url: "https://shop.example.com/cart", tree: simpleTree()}
	r := NewRegistry(testEnv(page, nil))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	action, _ := r.Get("sleep")
	start := time.Now()
	result, err := action.Execute(ctx, "10")

	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSleepWithoutNumber(t *testing.T) {
	page := &fakePage{url: "https://shop.example.com/cart", tree: simpleTree()}
	r := NewRegistry(testEnv(page, nil))

	action, _ := r.Get("sleep")
	result, err := action.Execute(context.Background(), "a little while")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Params.Has("Error"))
}

func TestSleepUntilPastInstant(t *testing.T) {
	page := &fakePage{url: "https://shop.example.com/cart", tree: simpleTree()}
	r := NewRegistry(testEnv(page, nil))

	action, _ := r.Get("sleep_until")
	result, err := action.Execute(context.Background(), "01/02/2006")
	require.NoError(t, err)
	require.NotNil(t, result)

	outcome, _ := result.Params.Get("Outcome")
	assert.Contains(t, outcome, "already passed")
}

func TestSleepUntilUnparseable(t *testing.T) {
	page := &fakePage{url: "https://shop.example.com/cart", tree: simpleTree()}
	r := NewRegistry(testEnv(page, nil))

	action, _ := r.Get("sleep_until")
	result, err := action.Execute(context.Background(), "gibberish zzz qqq")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Params.Has("Error"))
}

func TestFindInPageText(t *testing.T) {
	page := &fakePage{url: "https://shop.example.com/cart", tree: simpleTree()}
	fast := &fakeClient{completion: &llmclient.Completion{Content: "Checkout link found", Cost: 0.001}}
	env := testEnv(page, fast)
	r := NewRegistry(env)

	action, _ := r.Get("find_in_page_text")
	result, err := action.Execute(context.Background(), "the checkout link")
	require.NoError(t, err)
	require.NotNil(t, result)

	found, _ := result.Params.Get("All Find Results")
	assert.Equal(t, "Checkout link found", found)
	assert.InDelta(t, 0.001, result.Cost, 1e-9)

	// Find payloads carry the results-retention notice, not the generic one.
	notice, _ := result.Params.Get("Notice")
	assert.Contains(t, notice, "MUST message anything from Find Results")

	// The snapshot also refreshed the link registry used for URL repair.
	assert.NotEmpty(t, env.PageLinks())
}

func TestFindResultCapped(t *testing.T) {
	page := &fakePage{url: "https://shop.example.com/cart", tree: simpleTree()}
	fast := &fakeClient{completion: &llmclient.Completion{Content: strings.Repeat("x", 500)}}
	r := NewRegistry(testEnv(page, fast))

	action, _ := r.Get("find_in_page_text")
	result, err := action.Execute(context.Background(), "anything")
	require.NoError(t, err)
	require.NotNil(t, result)

	found, _ := result.Params.Get("All Find Results")
	assert.Contains(t, found, textpage.TruncatedBelowMarker)
	assert.Less(t, len(found), 500)
}

func TestRequestUserInterventionIsBlocking(t *testing.T) {
	page := &fakePage{url: "https://shop.example.com/cart", tree: simpleTree()}
	r := NewRegistry(testEnv(page, nil))

	action, _ := r.Get("request_user_intervention")
	result, err := action.Execute(context.Background(), "CAPTCHA on screen")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Blocking)

	outcome, _ := result.Params.Get("Outcome")
	assert.Contains(t, outcome, "CAPTCHA on screen")
}
