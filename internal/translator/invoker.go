package translator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/troosts/doctranslate/pkg/providers"
)

// Separator delimits per-segment translations in a batched model response.
const Separator = "---TRANSLATION_SEPARATOR---"

const systemPrompt = "You are a professional translator. Translate accurately while preserving the meaning, tone, and formatting of the original text."

var ordinalPrefix = regexp.MustCompile(`^\s*(\d+)[.)]\s*`)

// Invoker turns batches of segment texts into translations. It degrades
// instead of failing: a provider error, a malformed response, or a count
// shortfall yields the original text for the affected positions, so a
// document can always be reassembled.
type Invoker struct {
	provider      providers.Provider
	log           *zap.Logger
	maxChunkChars int
}

// NewInvoker wraps a provider. maxChunkChars bounds single-text translation
// requests; values below 1 fall back to 3000.
func NewInvoker(p providers.Provider, maxChunkChars int, log *zap.Logger) *Invoker {
	if maxChunkChars <= 0 {
		maxChunkChars = 3000
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Invoker{provider: p, log: log, maxChunkChars: maxChunkChars}
}

// TranslateBatch translates texts into targetLang, returning exactly one
// result per input in the same order. Empty or whitespace-only inputs map to
// themselves without being sent to the provider.
func (inv *Invoker) TranslateBatch(ctx context.Context, texts []string, targetLang string) []string {
	out := make([]string, len(texts))
	copy(out, texts)

	var payload []string
	var positions []int
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		payload = append(payload, t)
		positions = append(positions, i)
	}
	if len(payload) == 0 {
		return out
	}

	resp, err := inv.provider.Translate(ctx, &providers.Request{
		System:         systemPrompt,
		Text:           batchPrompt(payload, targetLang),
		TargetLanguage: targetLang,
	})
	if err != nil {
		inv.log.Warn("batch translation failed, keeping original text",
			zap.Int("segments", len(payload)),
			zap.Error(err))
		return out
	}

	parts := splitBatchResponse(resp.Text, len(payload))
	if len(parts) < len(payload) {
		inv.log.Warn("translation response is short, padding with originals",
			zap.Int("want", len(payload)),
			zap.Int("got", len(parts)))
	}

	for i, pos := range positions {
		if i < len(parts) && strings.TrimSpace(parts[i]) != "" {
			out[pos] = parts[i]
		}
	}
	return out
}

// batchPrompt numbers the inputs and asks for separator-delimited output.
func batchPrompt(texts []string, targetLang string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Translate the following %d texts to %s.\n", len(texts), targetLang)
	sb.WriteString("Preserve the meaning and tone of each text. Do not merge or omit any of them.\n")
	fmt.Fprintf(&sb, "Return only the translations, in the same order, separated by lines containing exactly %q.\n\n", Separator)
	for i, t := range texts {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, t)
	}
	return sb.String()
}

// splitBatchResponse recovers per-segment translations. It prefers the
// separator protocol and falls back to re-reading the model's numbered list
// when the separator is missing.
func splitBatchResponse(resp string, want int) []string {
	if strings.Contains(resp, Separator) {
		parts := strings.Split(resp, Separator)
		// Empty parts stay in place so later translations keep their
		// positions; blanks fall back to the original text at apply time.
		for i, p := range parts {
			p = strings.TrimSpace(p)
			parts[i] = ordinalPrefix.ReplaceAllString(p, "")
		}
		return parts
	}
	return parseNumbered(resp, want)
}

// parseNumbered reconstructs segments from a numbered-list response. A line
// starting with the next expected ordinal opens a new segment; other lines
// continue the current one.
func parseNumbered(resp string, want int) []string {
	var parts []string
	var cur strings.Builder
	started := false

	flush := func() {
		if started {
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
		}
	}

	for _, line := range strings.Split(resp, "\n") {
		m := ordinalPrefix.FindStringSubmatch(line)
		if m != nil && m[1] == fmt.Sprintf("%d", len(parts)+boolToInt(started)+1) && len(parts) < want {
			flush()
			started = true
			cur.WriteString(strings.TrimSpace(line[len(m[0]):]))
			continue
		}
		if started {
			if strings.TrimSpace(line) == "" {
				continue
			}
			cur.WriteString(" ")
			cur.WriteString(strings.TrimSpace(line))
		}
	}
	flush()

	if len(parts) == 0 {
		trimmed := strings.TrimSpace(resp)
		if trimmed != "" && want == 1 {
			return []string{trimmed}
		}
	}
	return parts
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// TranslateText translates a single long text, splitting it into bounded
// chunks. A failed chunk is replaced inline with an error marker so the rest
// of the text still comes through.
func (inv *Invoker) TranslateText(ctx context.Context, text, targetLang string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	runes := []rune(text)
	var out []string

	for start := 0; start < len(runes); start += inv.maxChunkChars {
		end := start + inv.maxChunkChars
		if end > len(runes) {
			end = len(runes)
		}
		chunk := string(runes[start:end])
		if strings.TrimSpace(chunk) == "" {
			continue
		}

		resp, err := inv.provider.Translate(ctx, &providers.Request{
			System:         systemPrompt,
			Text:           chunkPrompt(chunk, targetLang),
			TargetLanguage: targetLang,
		})
		if err != nil {
			inv.log.Warn("chunk translation failed",
				zap.Int("offset", start),
				zap.Error(err))
			out = append(out, fmt.Sprintf("Translation error: %v", err))
			continue
		}

		translated := strings.TrimSpace(resp.Text)
		if translated == "" {
			translated = chunk
		}
		out = append(out, translated)
	}

	if len(out) == 0 {
		return text
	}
	return strings.Join(out, "\n")
}

func chunkPrompt(text, targetLang string) string {
	return fmt.Sprintf("Translate the following text to %s. Maintain the original formatting and structure. Only return the translated text, without explanations.\n\n%s", targetLang, text)
}
