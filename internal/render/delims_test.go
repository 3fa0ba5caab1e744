package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "plain text",
			src:  "\\section{Results}\n",
			want: "\\section{Results}\n",
		},
		{
			name: "variable keeps surrounding whitespace",
			src:  "  ((( .X )))\n",
			want: "  ((( .X )))\n",
		},
		{
			name: "blocks on their own lines",
			src:  "start\n  ((* if .X *))\nyes\n  ((* end *))\ndone\n",
			want: "start\n((( if .X )))yes\n((( end )))done\n",
		},
		{
			name: "inline block keeps preceding text",
			src:  "x ((* if true *))y((* end *))\n",
			want: "x ((( if true )))y((( end )))",
		},
		{
			name: "comment",
			src:  "a ((= note =))b",
			want: "a (((/* note */)))b",
		},
		{
			name: "comment line is trimmed",
			src:  "\t((= header =))\n\\begin{document}\n",
			want: "(((/* header */)))\\begin{document}\n",
		},
		{
			name: "crlf line endings",
			src:  "((* if true *))\r\nx\r\n((* end *))\r\n",
			want: "((( if true )))x\r\n((( end )))",
		},
		{
			name: "latex braces are text",
			src:  "\\textbf{((( .X )))}{{}}",
			want: "\\textbf{((( .X )))}{{}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := translate("t", tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslateUnclosed(t *testing.T) {
	tests := []struct {
		src  string
		line string
		tag  string
	}{
		{"a ((* if .X", "t:1:", BlockStart},
		{"a\nb\n((( .X", "t:3:", VariableStart},
		{"((* if .X *))\nfoo ((= note", "t:2:", CommentStart},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			_, err := translate("t", tt.src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnclosedTag))
			assert.True(t, strings.HasPrefix(err.Error(), tt.line), "error %q", err)
			assert.Contains(t, err.Error(), tt.tag)
		})
	}
}
