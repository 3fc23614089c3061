package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
)

// Character は脚本に登場する人物です。
type Character struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	VisualCues   []string `json:"visual_cues,omitempty"`   // 生成プロンプトに注入する外見上の特徴
	ReferenceURL string   `json:"reference_url,omitempty"` // 一貫性保持のための参照画像URL
}

// Location は撮影場所です。
type Location struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ReferenceURL string `json:"reference_url,omitempty"`
}

// CharacterID は出現順の連番と名前から ID を作ります。例: "char-1-mara"
func CharacterID(n int, name string) string {
	return fmt.Sprintf("char-%d-%s", n, Slugify(name))
}

// LocationID は出現順の連番と名前から ID を作ります。例: "location-2-kitchen"
func LocationID(n int, name string) string {
	return fmt.Sprintf("location-%d-%s", n, Slugify(name))
}

// String はキャラクターの情報を文字列で返します。
func (c Character) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.ID)
}

// FindCharacter は ID または名前（大文字小文字無視）でキャラクターを探します。
func (a *ScriptAnalysis) FindCharacter(key string) *Character {
	for i := range a.Characters {
		c := &a.Characters[i]
		if c.ID == key || strings.EqualFold(c.Name, key) {
			res := *c
			return &res
		}
	}
	return nil
}

// GetSeedFromString は文字列から決定論的な正の seed 値を生成します。
// 数値 seed を要求するプロバイダに文字列 seed を渡すために使います。
func GetSeedFromString(s string) int64 {
	hash := sha256.Sum256([]byte(s))
	seed := int32(binary.BigEndian.Uint32(hash[:4]))
	// 正の数が望ましいため、最上位ビットを落とします
	return int64(seed & 0x7FFFFFFF)
}
