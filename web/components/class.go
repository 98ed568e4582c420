package components

import twmerge "github.com/Oudwins/tailwind-merge-go"

const inputClass = "mt-1 block w-full rounded-md border border-slate-300 px-3 py-2 text-sm"

// Class merges Tailwind class lists; later classes override conflicting
// earlier ones.
func Class(classes ...string) string {
	return twmerge.Merge(classes...)
}
