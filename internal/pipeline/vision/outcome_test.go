package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind Kind
		wantText string
	}{
		{"plain description", "camiseta azul", KindIdentified, "camiseta azul"},
		{"surrounding whitespace", "\n calça jeans preta \t", KindIdentified, "calça jeans preta"},
		{"prompt echo", "Descreva a peça de roupa nesta imagem: vestido vermelho", KindIdentified, "vestido vermelho"},
		{"prompt echo takes first segment", "Descreva a peça de roupa nesta imagem: saia: longa", KindIdentified, "saia"},
		{"prompt echo without colon", "Descreva a peça de roupa nesta imagem em poucas palavras", KindUnclear, MessageUnclear},
		{"prompt echo empty after colon", "Descreva a peça de roupa nesta imagem:   ", KindUnclear, MessageUnclear},
		{"not clothing", "Não é uma peça de roupa", KindNotClothing, MessageNotClothing},
		{"not clothing upper with period", "NÃO É UMA PEÇA DE ROUPA.", KindNotClothing, MessageNotClothing},
		{"not clothing after prompt echo", "Descreva a peça de roupa nesta imagem: não é uma peça de roupa", KindNotClothing, MessageNotClothing},
		{"sentence containing sentinel", "acho que não é uma peça de roupa comum", KindIdentified, "acho que não é uma peça de roupa comum"},
		{"empty", "   ", KindUnidentified, MessageUnidentified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Normalize(tt.raw)
			assert.Equal(t, tt.wantKind, out.Kind)
			assert.Equal(t, tt.wantText, out.Text())
		})
	}
}

func TestIsSentinel(t *testing.T) {
	assert.True(t, IsSentinel(MessageNotClothing))
	assert.True(t, IsSentinel(MessageUnclear))
	assert.True(t, IsSentinel(MessageUnidentified))
	assert.False(t, IsSentinel("camiseta azul"))
}
