// Package classifier is the keyword fallback classifier: a hand-rolled
// tokenizer, stopword filter, and suffix stemmer feeding a productive vs
// unproductive keyword score. It needs no model server and always answers.
package classifier

import (
	"strings"
	"unicode"
)

// The two classifications this heuristic can produce.
const (
	Productive   = "Productive"
	Unproductive = "Unproductive"
)

// Suffixes stripped by the stemmer, longest first.
var suffixes = []string{"edly", "ing", "ed", "s"}

// Stopwords covers English plus the pt-BR set the service historically
// handled.
var stopwords = map[string]struct{}{}

func init() {
	words := []string{
		// English
		"a", "an", "the", "and", "or", "but", "if", "while", "of", "to", "in", "on", "for",
		"at", "by", "from", "with", "as", "is", "are", "was", "were", "be", "been", "being",
		"this", "that", "these", "those", "it", "its", "i", "you", "your", "yours", "we",
		"our", "ours", "they", "their", "theirs", "he", "she", "him", "her", "his", "hers",
		"not", "no", "do", "does", "did", "done", "can", "could", "should", "would", "will",
		"just", "so", "than", "then", "there", "here", "about", "into", "over", "under",
		// Portuguese (pt-BR)
		"o", "as", "os", "um", "uma", "uns", "umas",
		"de", "da", "das", "dos", "em", "na", "nas", "nos", "num", "numa",
		"por", "pelo", "pela", "pelos", "pelas",
		"para", "pra", "com", "sem", "sob", "sobre", "entre", "até", "após", "antes", "desde", "durante", "contra",
		"e", "ou", "mas", "porém", "contudo", "todavia", "porque", "que", "como", "quando", "onde",
		"se", "pois", "portanto", "então", "também", "ainda", "já", "só", "somente", "nunca", "sempre", "talvez",
		"muito", "muita", "muitos", "muitas", "pouco", "pouca", "poucos", "poucas", "todo", "toda", "todos", "todas",
		"mesmo", "mesma", "mesmos", "mesmas", "cada", "qualquer", "nada", "tudo",
		"eu", "tu", "você", "vocês", "ele", "ela", "eles", "elas", "nós",
		"me", "te", "vos", "lhe", "lhes",
		"meu", "minha", "meus", "minhas", "teu", "tua", "teus", "tuas",
		"seu", "sua", "seus", "suas", "dele", "dela", "deles", "delas",
		"este", "esta", "estes", "estas", "esse", "essa", "esses", "essas", "aquele", "aquela", "isto", "isso", "aquilo",
		"aqui", "aí", "ali", "lá",
		"ser", "estar", "ter", "haver", "foi", "era", "são", "está", "estão", "fui", "foram",
	}
	for _, w := range words {
		stopwords[w] = struct{}{}
	}
}

var productiveKeywords = map[string]struct{}{}
var unproductiveKeywords = map[string]struct{}{}

func init() {
	productive := []string{
		// English
		"invoice", "payment", "schedule", "meeting", "follow", "timeline", "deliverable",
		"proposal", "contract", "update", "report", "deadline", "review", "sync", "plan",
		"action", "task", "next", "confirm", "confirmat", "call", "agenda", "scope",
		// Portuguese (pt-BR)
		"fatura", "boleto", "pagamento", "reuniao", "reunião", "marcar",
		"cronograma", "prazo", "entrega", "entregavel", "entregável",
		"proposta", "contrato", "atualizacao", "atualização", "relatorio", "relatório",
		"revisao", "revisão", "alinhamento", "plano", "acao", "ação", "tarefa", "proximo", "próximo",
		"confirmar", "ligacao", "ligação", "chamada", "pauta", "escopo", "orcamento", "orçamento", "aprovacao", "aprovação",
	}
	unproductive := []string{
		// English
		"offer", "discount", "promo", "promotion", "limited", "free", "deal", "buy",
		"sale", "win", "lottery", "click", "unsubscribe", "coupon", "save",
		// Portuguese (pt-BR)
		"oferta", "desconto", "promocao", "promoção", "limitado", "gratis", "grátis", "gratuito", "brinde",
		"compre", "venda", "ganhe", "sorteio", "clique", "descadastre",
		"cupom", "economize", "spam", "publicidade",
	}
	// Tokens arrive stemmed, so the keyword sets must hold stems too.
	for _, w := range productive {
		productiveKeywords[Stem(w)] = struct{}{}
	}
	for _, w := range unproductive {
		unproductiveKeywords[Stem(w)] = struct{}{}
	}
}

// Tokenize lowercases the text, strips punctuation, and splits on
// whitespace.
func Tokenize(text string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

// Stem strips the longest matching suffix, as long as enough of the stem
// remains to stay meaningful.
func Stem(token string) string {
	for _, s := range suffixes {
		if strings.HasSuffix(token, s) && len(token) > len(s)+2 {
			return token[:len(token)-len(s)]
		}
	}
	return token
}

// Preprocess tokenizes title and content together, drops stopwords, and
// stems what remains.
func Preprocess(title, content string) []string {
	tokens := Tokenize(title + "\n\n" + content)
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, skip := stopwords[t]; skip {
			continue
		}
		out = append(out, Stem(t))
	}
	return out
}

// Classify scores productive keyword hits against unproductive ones. A
// score of at least 1 is Productive; everything else, including an empty
// token list, is Unproductive.
func Classify(tokens []string) string {
	if len(tokens) == 0 {
		return Unproductive
	}
	score := 0
	for _, t := range tokens {
		if _, ok := productiveKeywords[t]; ok {
			score++
		}
		if _, ok := unproductiveKeywords[t]; ok {
			score--
		}
	}
	if score >= 1 {
		return Productive
	}
	return Unproductive
}

// SuggestReply returns the canned reply for a classification, used when no
// model server is available to draft one.
func SuggestReply(classification string) string {
	if classification == Productive {
		return "Thanks for the message. I will review and follow up with next steps shortly."
	}
	return "No response recommended."
}
