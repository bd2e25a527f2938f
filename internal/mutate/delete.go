package mutate

import "github.com/snackdriven/tender-circuit/internal/model"

// Delete removes an item and repairs references: deleting an event clears
// linkedEvent on tasks that pointed at it; deleting a task removes it from
// every other task's dependency set.
func Delete(items *[]model.Item, id string) (Result, error) {
	var removed *model.Item
	kept := make([]model.Item, 0, len(*items))
	for _, it := range *items {
		if it.ID == id {
			r := it.Clone()
			removed = &r
			continue
		}
		kept = append(kept, it)
	}
	if removed == nil {
		return Result{}, NotFoundError{Kind: "item", ID: id}
	}

	for i := range kept {
		if removed.IsEvent() && kept[i].LinkedEvent == id {
			kept[i].LinkedEvent = ""
		}
		if removed.IsTask() && len(kept[i].DependsOn) > 0 {
			deps := kept[i].DependsOn[:0]
			for _, d := range kept[i].DependsOn {
				if d != id {
					deps = append(deps, d)
				}
			}
			if len(deps) == 0 {
				kept[i].DependsOn = nil
			} else {
				kept[i].DependsOn = deps
			}
		}
	}

	*items = kept
	return Result{Item: removed, Changed: true}, nil
}
