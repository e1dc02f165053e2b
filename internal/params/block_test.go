package params

import "testing"

func TestExtractBlock(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		script        string
		expectedBlock string
		expectFound   bool
	}{
		{
			name:          "simple_block",
			script:        "param (\n [string]$Name\n)\n",
			expectedBlock: "\n [string]$Name\n",
			expectFound:   true,
		},
		{
			name:          "leading_whitespace_and_upper_case_keyword",
			script:        "\r\n\t PARAM(\r\n[int]$Count = 3\r\n)\r\nWrite-Host $Count\r\n",
			expectedBlock: "\r\n[int]$Count = 3\r\n",
			expectFound:   true,
		},
		{
			name:          "block_at_end_of_text",
			script:        "param([string]$Name)",
			expectedBlock: "[string]$Name",
			expectFound:   true,
		},
		{
			name:          "byte_order_mark",
			script:        "\ufeffparam(\n[switch]$Force\n)\n",
			expectedBlock: "\n[switch]$Force\n",
			expectFound:   true,
		},
		{
			name:          "nested_parentheses",
			script:        "param(\n[Parameter(Mandatory = $true)]\n[datetime]$When = (Get-Date)\n)\n",
			expectedBlock: "\n[Parameter(Mandatory = $true)]\n[datetime]$When = (Get-Date)\n",
			expectFound:   true,
		},
		{
			name:          "parenthesis_inside_string_and_comment",
			script:        "param(\n[string]$Greeting = \"smile :)\" # wink ;)\n)\n",
			expectedBlock: "\n[string]$Greeting = \"smile :)\" # wink ;)\n",
			expectFound:   true,
		},
		{
			name:        "no_param_keyword",
			script:      "Write-Host 'hello'\nparam(\n[string]$Name\n)\n",
			expectFound: false,
		},
		{
			name:        "comment_before_param",
			script:      "# header\nparam(\n[string]$Name\n)\n",
			expectFound: false,
		},
		{
			name:        "keyword_prefix_only",
			script:      "parameters(\n[string]$Name\n)\n",
			expectFound: false,
		},
		{
			name:        "unterminated_block",
			script:      "param(\n[string]$Name\n",
			expectFound: false,
		},
		{
			name:        "closing_parenthesis_followed_by_code",
			script:      "param([string]$Name) Write-Host $Name\n",
			expectFound: false,
		},
		{
			name:        "empty_text",
			script:      "",
			expectFound: false,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			block, found := ExtractBlock(testCase.script)
			if found != testCase.expectFound {
				t.Fatalf("ExtractBlock found = %v, want %v (block %q)", found, testCase.expectFound, block)
			}
			if found && block != testCase.expectedBlock {
				t.Fatalf("ExtractBlock = %q, want %q", block, testCase.expectedBlock)
			}
		})
	}
}
