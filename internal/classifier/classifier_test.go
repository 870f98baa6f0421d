package classifier

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("Hello, World! Pague o boleto #42 até sexta-feira.")
	want := []string{"hello", "world", "pague", "o", "boleto", "42", "até", "sexta", "feira"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenizeEmpty(t *testing.T) {
	if got := Tokenize("  ...  !!"); len(got) != 0 {
		t.Errorf("Tokenize(punctuation) = %v, want empty", got)
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"meeting", "meet"},
		{"scheduled", "schedul"},
		{"payments", "payment"},
		{"supposedly", "suppos"},
		{"sing", "sing"}, // too short to strip "ing"
		{"is", "is"},
		{"plan", "plan"},
	}
	for _, tt := range tests {
		if got := Stem(tt.in); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPreprocessDropsStopwords(t *testing.T) {
	got := Preprocess("The Invoice", "is about the payment for a meeting")
	want := []string{"invoice", "payment", "meet"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Preprocess = %v, want %v", got, want)
	}
}

func TestClassifyProductive(t *testing.T) {
	texts := []struct {
		title, content string
	}{
		{"Invoice #42", "Payment is due on Friday, please confirm."},
		{"Reunião amanhã", "Precisamos alinhar o cronograma de entrega."},
		{"Project update", "Attached is the report, review before the deadline."},
	}
	for _, tt := range texts {
		if got := Classify(Preprocess(tt.title, tt.content)); got != Productive {
			t.Errorf("Classify(%q) = %q, want Productive", tt.title, got)
		}
	}
}

func TestClassifyUnproductive(t *testing.T) {
	texts := []struct {
		title, content string
	}{
		{"LIMITED OFFER!!!", "Click here for a free discount, buy now!"},
		{"Promoção imperdível", "Ganhe um cupom de desconto, clique já!"},
		{"hey", "how was your weekend"},
	}
	for _, tt := range texts {
		if got := Classify(Preprocess(tt.title, tt.content)); got != Unproductive {
			t.Errorf("Classify(%q) = %q, want Unproductive", tt.title, got)
		}
	}
}

func TestClassifyEmptyTokens(t *testing.T) {
	if got := Classify(nil); got != Unproductive {
		t.Errorf("Classify(nil) = %q, want Unproductive", got)
	}
}

func TestSuggestReply(t *testing.T) {
	if got := SuggestReply(Productive); got != "Thanks for the message. I will review and follow up with next steps shortly." {
		t.Errorf("productive reply = %q", got)
	}
	if got := SuggestReply(Unproductive); got != "No response recommended." {
		t.Errorf("unproductive reply = %q", got)
	}
	if got := SuggestReply("anything else"); got != "No response recommended." {
		t.Errorf("fallback reply = %q", got)
	}
}
