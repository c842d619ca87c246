package match

import "testing"

func emptyContext() Context {
	return Context{
		Arrays: map[string][]string{},
		BotVar: func(string) string { return "" },
		GetVar: func(string) string { return "" },
	}
}

func TestCompileAtomic(t *testing.T) {
	re, err := Compile("hello world", emptyContext(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !re.MatchString("hello world") {
		t.Fatal("expected match")
	}
	if re.MatchString("hello world!") {
		t.Fatal("unexpected match")
	}
}

func TestCompileBareStar(t *testing.T) {
	re, err := Compile("*", emptyContext(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !re.MatchString("") {
		t.Fatal("bare * should match the empty string")
	}
	if !re.MatchString("anything at all") {
		t.Fatal("bare * should match anything")
	}
}

func TestCompileWildcardCaptures(t *testing.T) {
	re, err := Compile("my name is *", emptyContext(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	m := re.FindStringSubmatch("my name is bob")
	if len(m) != 2 || m[1] != "bob" {
		t.Fatalf("got %v", m)
	}
}

func TestCompileNumberWildcard(t *testing.T) {
	re, err := Compile("i am # years old", emptyContext(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	m := re.FindStringSubmatch("i am 30 years old")
	if len(m) != 2 || m[1] != "30" {
		t.Fatalf("got %v", m)
	}
	if re.MatchString("i am abc years old") {
		t.Fatal("numeric wildcard should not match letters")
	}
}

func TestCompileOptional(t *testing.T) {
	re, err := Compile("can you [please] help me", emptyContext(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !re.MatchString("can you help me") {
		t.Fatal("optional should allow omission")
	}
	if !re.MatchString("can you please help me") {
		t.Fatal("optional should allow presence")
	}
}

func TestCompileArrayReference(t *testing.T) {
	ctx := emptyContext()
	ctx.Arrays["colors"] = []string{"red", "blue"}
	re, err := Compile("i like @colors", ctx, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !re.MatchString("i like red") || !re.MatchString("i like blue") {
		t.Fatal("expected array alternatives to match")
	}
	if re.MatchString("i like green") {
		t.Fatal("unlisted array item should not match")
	}
}

func TestCompileBotTag(t *testing.T) {
	ctx := emptyContext()
	ctx.BotVar = func(name string) string {
		if name == "name" {
			return "Rive"
		}
		return ""
	}
	re, err := Compile("my name is also <bot name>", ctx, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !re.MatchString("my name is also rive") {
		t.Fatal("expected <bot name> to expand to the lowered bot var")
	}
}

func TestCompileWeightTagRemoved(t *testing.T) {
	re, err := Compile("{weight=10}hello", emptyContext(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !re.MatchString("hello") {
		t.Fatal("weight tag should be stripped before compiling")
	}
}
