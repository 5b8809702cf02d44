// Package fetcher retrieves astrology content and delivers it to recipients.
//
// Each content kind maps to a fetch strategy in a table built at construction
// time. The kind enumeration and the table are required to stay in lock-step:
// a kind without a strategy panics at New(), not at dispatch.
//
// Strategies differ in retry behavior:
//   - Skywatch walks a bounded list of dated URL variants, with a one-shot
//     weekend fallback on Saturdays and Sundays.
//   - AstrologyAnswers and the zodiac signs are single-attempt.
//
// Retries are sequential: each attempt waits for the prior response before
// deciding. Exhausted strategies report once to the guild's failure
// listeners and never crash the process.
package fetcher
