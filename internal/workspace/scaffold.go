package workspace

import (
	"fmt"
	"regexp"
	"strings"

	"codeloom/internal/models"
)

// Scaffold returns the fixed starter file set for a language: package
// manifest, dependency list, ignore file, test config, an example utility
// with its test, and a README. Pure: identical inputs yield identical
// file sets.
func Scaffold(language, projectName string) ([]models.FileRecord, error) {
	if projectName == "" {
		projectName = "my-app"
	}
	switch language {
	case "typescript":
		return scaffoldTypeScript(projectName), nil
	case "javascript":
		return scaffoldJavaScript(projectName), nil
	case "python":
		return scaffoldPython(projectName), nil
	case "go":
		return scaffoldGo(projectName), nil
	default:
		return nil, fmt.Errorf("no scaffold for language %q", language)
	}
}

var manifestNameRe = regexp.MustCompile(`("name"\s*:\s*")[^"]*(")`)

// RewriteManifestName rewrites the manifest's name field in place after a
// project rename. Files without a recognized manifest are returned
// unchanged.
func RewriteManifestName(files []models.FileRecord, newName string) []models.FileRecord {
	out := models.CloneFiles(files)
	for i, f := range out {
		switch f.Path {
		case "package.json":
			out[i].Content = manifestNameRe.ReplaceAllString(f.Content, "${1}"+newName+"${2}")
		case "pyproject.toml":
			out[i].Content = regexp.MustCompile(`(?m)^name = "[^"]*"`).ReplaceAllString(f.Content, `name = "`+newName+`"`)
		case "go.mod":
			out[i].Content = regexp.MustCompile(`(?m)^module .*$`).ReplaceAllString(f.Content, "module "+sanitizeModuleName(newName))
		}
	}
	return out
}

func sanitizeModuleName(name string) string {
	name = strings.ToLower(name)
	name = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '/' || r == '.' {
			return r
		}
		return '-'
	}, name)
	if name == "" {
		name = "my-app"
	}
	return name
}

func scaffoldTypeScript(name string) []models.FileRecord {
	return []models.FileRecord{
		{Path: "package.json", Content: fmt.Sprintf(`{
  "name": %q,
  "version": "0.1.0",
  "private": true,
  "type": "module",
  "scripts": {
    "test": "vitest run"
  },
  "devDependencies": {
    "typescript": "^5.5.0",
    "vitest": "^2.0.0"
  }
}
`, name)},
		{Path: "tsconfig.json", Content: `{
  "compilerOptions": {
    "target": "ES2022",
    "module": "ESNext",
    "moduleResolution": "bundler",
    "strict": true,
    "noUncheckedIndexedAccess": true,
    "outDir": "dist"
  },
  "include": ["src"]
}
`},
		{Path: ".gitignore", Content: "node_modules/\ndist/\n"},
		{Path: "vitest.config.ts", Content: `import { defineConfig } from "vitest/config";

export default defineConfig({
  test: {
    include: ["src/**/*.test.ts"],
  },
});
`},
		{Path: "src/utils/capitalize.ts", Content: `export function capitalize(input: string): string {
  if (input.length === 0) {
    return input;
  }
  return input[0].toUpperCase() + input.slice(1);
}
`},
		{Path: "src/utils/capitalize.test.ts", Content: `import { describe, expect, it } from "vitest";
import { capitalize } from "./capitalize";

describe("capitalize", () => {
  it("uppercases the first letter", () => {
    expect(capitalize("hello")).toBe("Hello");
  });

  it("leaves empty input alone", () => {
    expect(capitalize("")).toBe("");
  });
});
`},
		{Path: "README.md", Content: "# " + name + "\n\nGenerated TypeScript starter. Run `npm test` to execute the example test.\n"},
	}
}

func scaffoldJavaScript(name string) []models.FileRecord {
	return []models.FileRecord{
		{Path: "package.json", Content: fmt.Sprintf(`{
  "name": %q,
  "version": "0.1.0",
  "private": true,
  "type": "module",
  "scripts": {
    "test": "node --test"
  }
}
`, name)},
		{Path: ".gitignore", Content: "node_modules/\n"},
		{Path: "src/utils/capitalize.js", Content: `export function capitalize(input) {
  if (input.length === 0) {
    return input;
  }
  return input[0].toUpperCase() + input.slice(1);
}
`},
		{Path: "src/utils/capitalize.test.js", Content: `import { test } from "node:test";
import assert from "node:assert/strict";
import { capitalize } from "./capitalize.js";

test("uppercases the first letter", () => {
  assert.equal(capitalize("hello"), "Hello");
});
`},
		{Path: "README.md", Content: "# " + name + "\n\nGenerated JavaScript starter. Run `npm test` to execute the example test.\n"},
	}
}

func scaffoldPython(name string) []models.FileRecord {
	return []models.FileRecord{
		{Path: "pyproject.toml", Content: fmt.Sprintf(`[project]
name = "%s"
version = "0.1.0"
requires-python = ">=3.11"
dependencies = []

[tool.pytest.ini_options]
testpaths = ["tests"]
`, name)},
		{Path: ".gitignore", Content: "__pycache__/\n.venv/\n*.egg-info/\n"},
		{Path: "src/utils.py", Content: `def capitalize(value: str) -> str:
    """Uppercase the first letter of value."""
    if not value:
        return value
    return value[0].upper() + value[1:]
`},
		{Path: "tests/test_utils.py", Content: `from src.utils import capitalize


def test_capitalize() -> None:
    assert capitalize("hello") == "Hello"


def test_capitalize_empty() -> None:
    assert capitalize("") == ""
`},
		{Path: "README.md", Content: "# " + name + "\n\nGenerated Python starter. Run `pytest` to execute the example test.\n"},
	}
}

func scaffoldGo(name string) []models.FileRecord {
	module := sanitizeModuleName(name)
	return []models.FileRecord{
		{Path: "go.mod", Content: "module " + module + "\n\ngo 1.25\n"},
		{Path: ".gitignore", Content: "bin/\n*.test\n"},
		{Path: "utils/capitalize.go", Content: `package utils

import "unicode"

// Capitalize uppercases the first rune of input.
func Capitalize(input string) string {
	runes := []rune(input)
	if len(runes) == 0 {
		return input
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
`},
		{Path: "utils/capitalize_test.go", Content: `package utils

import "testing"

func TestCapitalize(t *testing.T) {
	if got := Capitalize("hello"); got != "Hello" {
		t.Fatalf("got %q, want %q", got, "Hello")
	}
	if got := Capitalize(""); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}
`},
		{Path: "README.md", Content: "# " + name + "\n\nGenerated Go starter. Run `go test ./...` to execute the example test.\n"},
	}
}
