package lexer

import (
	"fmt"
	"nilan/token"
	"strconv"
)

func isLetter(char rune) bool {
	return rune('a') <= char && char <= rune('z') || rune('A') <= char && char <= rune('Z') || char == rune('_')
}

func isNumber(char rune) bool {
	return rune('0') <= char && char <= rune('9')
}

// Lexer represents a lexical scanner for processing input text into tokens.
// It maintains the current scanning state, including the position within the
// input, the current character, and metadata for line/column tracking.
// The Lexer also records tokens and errors encountered during scanning.
type Lexer struct {
	// rune slice of the input string being scanned.
	characters []rune

	// Total number of runes in the input.
	totalChars int

	// Stores the sequence of tokens produced during lexing.
	tokens []token.Token

	// The index of the character that was previously read
	position int

	// The current character being examined.
	currentChar rune

	// The index of the next position where the next character
	// will be read
	readPosition int

	// Tracks the number of lines processed (incremented on newline).
	lineCount int32

	// Tracks the character's position within the current line.
	// Gets reset on every new line back to 0
	column int

	// Stores any scanning errors that occur during lexing.
	errors []error
}

// New initializes and returns a new Lexer instance for the given source text.
func New(input string) *Lexer {
	lexer := &Lexer{
		characters: []rune(input),
		lineCount:  1,
	}
	lexer.totalChars = len(lexer.characters)
	lexer.readChar()
	return lexer
}

// advance updates the Lexer's reading position forward by one character.
//
// Behavior:
//   - Sets `position` to the current `readPosition`
//   - Increments `readPosition` by 1, so the lexer is ready to read the next
//     character on the following call.
//   - Updates the `column` to match `readPosition`, keeping track of the
//     character's position within the line.
func (lexer *Lexer) advance() {
	lexer.position = lexer.readPosition
	lexer.readPosition++
	lexer.column = lexer.readPosition
}

// isFinished determines whether the lexer has finished scanning all the
// source code.
func (lexer *Lexer) isFinished() bool {
	return lexer.readPosition >= lexer.totalChars
}

// readChar reads the character at the Lexer's readPosition. If there are no
// more characters to read, it sets the Lexer's current character to null.
func (lexer *Lexer) readChar() {
	if lexer.isFinished() {
		lexer.currentChar = rune(0)
	} else {
		lexer.currentChar = lexer.characters[lexer.readPosition]
	}
	lexer.advance()
}

// readIllegal reads a sequence of characters from the input until a
// whitespace character or end-of-file marker (rune(0)) is encountered. Used
// to capture the offending span for an "unexpected character" diagnostic.
func (lexer *Lexer) readIllegal(startPos int) string {
	for !lexer.isWhiteSpace(lexer.currentChar) && !lexer.isFinished() {
		lexer.readChar()
	}
	return string(lexer.characters[startPos:lexer.readPosition])
}

// peek returns the character at the Lexer's readPosition without consuming
// it. Returns rune(0) once the input is exhausted.
func (lexer *Lexer) peek() rune {
	if lexer.isFinished() {
		return rune(0)
	}
	return lexer.characters[lexer.readPosition]
}

// peekNext returns the character one past readPosition without consuming it.
// Returns rune(0) once the input is exhausted.
func (lexer *Lexer) peekNext() rune {
	nextReadPos := lexer.readPosition + 1
	if nextReadPos >= lexer.totalChars {
		return rune(0)
	}
	return lexer.characters[nextReadPos]
}

// handleComment consumes a `//` line comment up to (but not including) the
// next newline or end of input.
func (lexer *Lexer) handleComment() {
	for lexer.peek() != rune('\n') && lexer.peek() != rune(0) {
		lexer.readChar()
	}
}

// handleNumber scans a sequence of digits (and at most one decimal point)
// from the input and creates a NUMBER literal token. The grammar has no
// exponent form and no leading-dot numbers (a leading `.` is the property
// access operator).
//
// Returns:
//   - nil if the token was successfully created and added
//   - an error if the number format is invalid (e.g. trailing or repeated
//     decimal point)
func (lexer *Lexer) handleNumber() error {
	initPos := lexer.position
	decimalCount := 0

	for {
		nextChar := lexer.peek()
		if nextChar == rune(0) || nextChar == rune('\n') || !isNumber(nextChar) && nextChar != rune('.') {
			break
		}
		if nextChar == '.' {
			if lexer.peekNext() == rune(0) || !isNumber(lexer.peekNext()) {
				illegalNumber := string(lexer.characters[initPos : lexer.readPosition+1])
				return fmt.Errorf("invalid number: '%s', line: %v", illegalNumber, lexer.lineCount)
			}
			if decimalCount == 1 {
				illegalNumber := lexer.readIllegal(initPos)
				return fmt.Errorf("invalid number: '%s', line: %v", illegalNumber, lexer.lineCount)
			}
			decimalCount++
		}
		lexer.advance()
	}
	number := string(lexer.characters[initPos:lexer.readPosition])
	result, _ := strconv.ParseFloat(number, 64)
	tok := token.CreateLiteralToken(token.NUMBER, result, number, lexer.lineCount, lexer.column)
	lexer.tokens = append(lexer.tokens, tok)
	return nil
}

// handleIdentifier processes a user identifier or a language keyword in the
// source code.
func (lexer *Lexer) handleIdentifier() {
	initPos := lexer.position
	for {
		result := lexer.peek()
		if result == rune(0) || !isLetter(result) && !isNumber(result) {
			break
		}
		lexer.advance()
	}

	identifier := string(lexer.characters[initPos:lexer.readPosition])
	tok := token.Token{
		TokenType: token.IDENTIFIER,
		Lexeme:    identifier,
		Line:      lexer.lineCount,
		Column:    lexer.column,
	}

	if keywordType, exists := token.KeyWords[identifier]; exists {
		tok.TokenType = keywordType
	}

	lexer.tokens = append(lexer.tokens, tok)
}

// handleStringLiteral processes a double-quoted string literal. The quotes
// delimit a raw span; no escape sequences are processed.
//
// Returns:
//   - nil if the string literal is properly closed and processed
//   - error if the string literal is unclosed
func (lexer *Lexer) handleStringLiteral() error {
	initPos := lexer.position
	isClosed := false
	for {
		result := lexer.peek()
		if result == 0 {
			break
		}
		if result == '\n' {
			lexer.lineCount++
		}
		lexer.advance()
		if result == '"' {
			isClosed = true
			break
		}
	}

	if !isClosed {
		return fmt.Errorf("unclosed string literal: '%s', line: %v", string(lexer.characters[initPos+1:lexer.readPosition]), lexer.lineCount)
	}

	// NOTE: `initPos+1` skips the opening quote; `lexer.position` is the
	// index of the closing quote, which the slice end excludes.
	stringLiteral := string(lexer.characters[initPos+1 : lexer.position])
	lexer.tokens = append(lexer.tokens, token.CreateLiteralToken(token.STRING, stringLiteral, stringLiteral, lexer.lineCount, lexer.column))
	return nil
}

// isMatch determines if the next character in the source code matches the
// `expected` character, consuming it if so.
func (lexer *Lexer) isMatch(expected rune) bool {
	if lexer.isFinished() {
		return false
	}
	if lexer.characters[lexer.readPosition] == expected {
		lexer.readPosition++
		return true
	}
	return false
}

// isWhiteSpace determines whether a given rune represents whitespace in the
// input stream: carriage return, tab, newline, or ASCII space. Newlines
// additionally increment the line counter and reset the column.
func (lexer *Lexer) isWhiteSpace(char rune) bool {
	if char == rune(' ') || char == rune('\r') || char == rune('\t') {
		return true
	}
	if lexer.currentChar == rune('\n') {
		lexer.lineCount++
		lexer.column = 0
		return true
	}
	return false
}

// skipWhiteSpace skips all whitespace in the input while advancing the
// Lexer's position.
func (lexer *Lexer) skipWhiteSpace() {
	for lexer.isWhiteSpace(lexer.currentChar) {
		lexer.readChar()
	}
}

// createToken processes the current character and appends a token if
// applicable.
func (lexer *Lexer) createToken() {
	lexer.skipWhiteSpace()

	switch lexer.currentChar {
	case rune('('):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.LPA, lexer.lineCount, lexer.column))
	case rune(')'):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.RPA, lexer.lineCount, lexer.column))
	case rune('{'):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.LCUR, lexer.lineCount, lexer.column))
	case rune('}'):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.RCUR, lexer.lineCount, lexer.column))
	case rune(';'):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.SEMICOLON, lexer.lineCount, lexer.column))
	case rune(','):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.COMMA, lexer.lineCount, lexer.column))
	case rune('.'):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.DOT, lexer.lineCount, lexer.column))
	case rune('?'):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.QUESTION, lexer.lineCount, lexer.column))
	case rune(':'):
		lexer.tokens = append(lexer.tokens, token.CreateToken(token.COLON, lexer.lineCount, lexer.column))
	case rune('*'):
		tok := token.CreateToken(token.MULT, lexer.lineCount, lexer.column)
		if lexer.isMatch(rune('=')) {
			tok = token.CreateToken(token.STAR_EQUAL, lexer.lineCount, lexer.column)
		}
		lexer.tokens = append(lexer.tokens, tok)
	case rune('+'):
		tok := token.CreateToken(token.ADD, lexer.lineCount, lexer.column)
		if lexer.isMatch(rune('=')) {
			tok = token.CreateToken(token.PLUS_EQUAL, lexer.lineCount, lexer.column)
		} else if lexer.isMatch(rune('+')) {
			tok = token.CreateToken(token.INCREMENT, lexer.lineCount, lexer.column)
		}
		lexer.tokens = append(lexer.tokens, tok)
	case rune('-'):
		tok := token.CreateToken(token.SUB, lexer.lineCount, lexer.column)
		if lexer.isMatch(rune('=')) {
			tok = token.CreateToken(token.MINUS_EQUAL, lexer.lineCount, lexer.column)
		} else if lexer.isMatch(rune('-')) {
			tok = token.CreateToken(token.DECREMENT, lexer.lineCount, lexer.column)
		}
		lexer.tokens = append(lexer.tokens, tok)
	case rune('/'):
		if lexer.peek() == rune('/') {
			lexer.handleComment()
		} else {
			tok := token.CreateToken(token.DIV, lexer.lineCount, lexer.column)
			if lexer.isMatch(rune('=')) {
				tok = token.CreateToken(token.SLASH_EQUAL, lexer.lineCount, lexer.column)
			}
			lexer.tokens = append(lexer.tokens, tok)
		}
	case rune('='):
		tok := token.CreateToken(token.ASSIGN, lexer.lineCount, lexer.column)
		if lexer.isMatch(rune('=')) {
			tok = token.CreateToken(token.EQUAL_EQUAL, lexer.lineCount, lexer.column)
		}
		lexer.tokens = append(lexer.tokens, tok)
	case rune('!'):
		tok := token.CreateToken(token.BANG, lexer.lineCount, lexer.column)
		if lexer.isMatch(rune('=')) {
			tok = token.CreateToken(token.NOT_EQUAL, lexer.lineCount, lexer.column)
		}
		lexer.tokens = append(lexer.tokens, tok)
	case rune('<'):
		tok := token.CreateToken(token.LESS, lexer.lineCount, lexer.column)
		if lexer.isMatch(rune('=')) {
			tok = token.CreateToken(token.LESS_EQUAL, lexer.lineCount, lexer.column)
		}
		lexer.tokens = append(lexer.tokens, tok)
	case rune('>'):
		tok := token.CreateToken(token.LARGER, lexer.lineCount, lexer.column)
		if lexer.isMatch(rune('=')) {
			tok = token.CreateToken(token.LARGER_EQUAL, lexer.lineCount, lexer.column)
		}
		lexer.tokens = append(lexer.tokens, tok)
	case rune('"'):
		if err := lexer.handleStringLiteral(); err != nil {
			lexer.errors = append(lexer.errors, err)
		}
	default:
		if isLetter(lexer.currentChar) {
			lexer.handleIdentifier()
		} else if isNumber(lexer.currentChar) {
			if err := lexer.handleNumber(); err != nil {
				lexer.errors = append(lexer.errors, err)
			}
		} else if !lexer.isFinished() {
			position := lexer.position
			column := lexer.column
			currentChar := lexer.currentChar
			illegal := lexer.readIllegal(position)
			lexer.errors = append(lexer.errors, fmt.Errorf("unexpected character: '%c' in: '%s', line: %v, column: %v", currentChar, illegal, lexer.lineCount, column))
		}
	}

	lexer.readChar()
}

// Scan performs lexical analysis on the input and returns the full token
// stream, terminated by an EOF token.
//
// Returns:
//   - []token.Token: all tokens found in the input, including a trailing EOF.
//   - error: the first lexing error encountered, or nil if none occurred.
func (lexer *Lexer) Scan() ([]token.Token, error) {
	if lexer.totalChars > 1 {
		for lexer.currentChar != rune(0) {
			lexer.createToken()
			if len(lexer.errors) > 0 {
				return lexer.tokens, lexer.errors[0]
			}
		}
	} else {
		lexer.createToken()
		if len(lexer.errors) > 0 {
			return lexer.tokens, lexer.errors[0]
		}
	}
	lexer.tokens = append(lexer.tokens, token.CreateToken(token.EOF, lexer.lineCount, lexer.column))
	return lexer.tokens, nil
}
