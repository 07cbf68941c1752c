package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-chat-go/internal/apperr"
)

// 生成一段不含任何分隔符的循环字母文本，便于按位置断言分块边界。
func lettersText(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(byte('a' + i%26))
	}
	return b.String()
}

func TestNewSplitterValidation(t *testing.T) {
	cases := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"chunk_size 为零", 0, 0},
		{"chunk_size 为负", -1, 0},
		{"overlap 为负", 100, -1},
		{"overlap 等于 chunk_size", 100, 100},
		{"overlap 大于 chunk_size", 100, 150},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSplitter(tc.chunkSize, tc.overlap)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		})
	}
}

func TestSplitEmptyText(t *testing.T) {
	s, err := NewSplitter(1000, 200)
	require.NoError(t, err)
	assert.Nil(t, s.Split(""))
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	s, err := NewSplitter(1000, 200)
	require.NoError(t, err)

	text := "这是一段不需要切分的短文本。"
	chunks := s.Split(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitSlidingWindowOnSeparatorFreeText(t *testing.T) {
	s, err := NewSplitter(1000, 200)
	require.NoError(t, err)

	text := lettersText(2500)
	chunks := s.Split(text)
	require.Len(t, chunks, 3)

	// 无分隔符输入退化为步长 chunkSize-overlap 的滑动窗口
	assert.Equal(t, text[0:1000], chunks[0])
	assert.Equal(t, text[800:1800], chunks[1])
	assert.Equal(t, text[1600:2500], chunks[2])

	// 相邻分块保留 overlap 长度的重叠
	for i := 0; i < len(chunks)-1; i++ {
		tail := chunks[i][len(chunks[i])-200:]
		assert.True(t, strings.HasPrefix(chunks[i+1], tail),
			"分块 %d 的尾部应是分块 %d 的开头", i, i+1)
	}
}

func TestSplitDeterministic(t *testing.T) {
	s, err := NewSplitter(300, 50)
	require.NoError(t, err)

	text := lettersText(2000) + "\n\n" + lettersText(700)
	first := s.Split(text)
	second := s.Split(text)
	assert.Equal(t, first, second)
}

func TestSplitRespectsChunkSize(t *testing.T) {
	s, err := NewSplitter(120, 30)
	require.NoError(t, err)

	text := strings.Repeat("第一段落的内容。在这里反复出现。\n\n", 30) +
		strings.Repeat("Short sentence here. ", 40)
	for i, c := range s.Split(text) {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 120, "分块 %d 超出上限", i)
		assert.NotEmpty(t, c)
	}
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	s, err := NewSplitter(100, 0)
	require.NoError(t, err)

	para1 := lettersText(80)
	para2 := lettersText(90)
	chunks := s.Split(para1 + "\n\n" + para2)
	require.Len(t, chunks, 2)
	assert.Equal(t, para1+"\n\n", chunks[0])
	assert.Equal(t, para2, chunks[1])
}

func TestSplitMultibyteCountsRunes(t *testing.T) {
	s, err := NewSplitter(10, 2)
	require.NoError(t, err)

	text := strings.Repeat("汉", 25)
	chunks := s.Split(text)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 10)
	}
	// 首尾拼接应覆盖原文的开头与结尾
	assert.True(t, strings.HasPrefix(text, chunks[0][:3]))
	last := chunks[len(chunks)-1]
	assert.True(t, strings.HasSuffix(text, last))
}

func TestSplitZeroOverlapCoversFullText(t *testing.T) {
	s, err := NewSplitter(500, 0)
	require.NoError(t, err)

	text := lettersText(1700)
	chunks := s.Split(text)
	// overlap 为零时分块顺序拼接应精确还原原文
	assert.Equal(t, text, strings.Join(chunks, ""))
}
