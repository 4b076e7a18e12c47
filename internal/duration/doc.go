// Package duration converts the free-form duration text used on deetlist pages
// into whole seconds.
//
// Pool timers appear as "instant", "45 minutes", "2 hours", "1hr 30min" or
// "3 day 4 hrs". Event lengths appear as "This event lasts 3 days" and are
// handled separately by Days.
package duration
