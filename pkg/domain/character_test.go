package domain

import (
	"testing"
)

func TestGetSeedFromString(t *testing.T) {
	t.Run("同じ文字列からは同じSeedが生成されること", func(t *testing.T) {
		s1 := GetSeedFromString("shot-1")
		s2 := GetSeedFromString("shot-1")
		if s1 != s2 {
			t.Errorf("同じ入力から異なるSeedが生成されました: %d != %d", s1, s2)
		}
	})

	t.Run("Seedは負にならないこと", func(t *testing.T) {
		for _, in := range []string{"", "a", "KITCHEN", "夜の街", "scene-12"} {
			if seed := GetSeedFromString(in); seed < 0 {
				t.Errorf("入力 %q で負のSeed %d が生成されました", in, seed)
			}
		}
	})
}

func TestCharacterAndLocationIDs(t *testing.T) {
	if got := CharacterID(1, "MARA"); got != "char-1-mara" {
		t.Errorf("期待値 'char-1-mara', 実際の値 '%s'", got)
	}
	if got := LocationID(2, "Old Mill / Back Room"); got != "location-2-old-mill-back-room" {
		t.Errorf("期待値 'location-2-old-mill-back-room', 実際の値 '%s'", got)
	}
	if got := CharacterID(3, "ずんだもん"); got != "char-3-unnamed" {
		t.Errorf("英数字を含まない名前は unnamed になるはずです: '%s'", got)
	}
	for _, id := range []string{CharacterID(1, "O'NEIL"), LocationID(9, "  ")} {
		if !IsURLSafeID(id) {
			t.Errorf("ID %q が URL セーフではありません", id)
		}
	}
}

func TestCharacter_String(t *testing.T) {
	c := Character{ID: "char-1-mara", Name: "MARA"}
	expected := "MARA (char-1-mara)"
	if c.String() != expected {
		t.Errorf("期待値 '%s', 実際の値 '%s'", expected, c.String())
	}
}

func TestFindCharacter(t *testing.T) {
	a := ScriptAnalysis{Characters: []Character{{ID: "char-1-mara", Name: "MARA"}}}

	if c := a.FindCharacter("mara"); c == nil || c.ID != "char-1-mara" {
		t.Errorf("名前での検索に失敗しました: %+v", c)
	}
	if c := a.FindCharacter("char-1-mara"); c == nil {
		t.Error("IDでの検索に失敗しました")
	}
	if c := a.FindCharacter("nobody"); c != nil {
		t.Errorf("存在しないキャラクターが見つかりました: %+v", c)
	}
}
